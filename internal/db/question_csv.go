package db

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// QuestionRecord is one parsed row of a question CSV:
// kind,question,answer1,points1,answer2,points2,...
type QuestionRecord struct {
	Kind    string
	Text    string
	Answers []AnswerRecord
}

type AnswerRecord struct {
	Text   string `json:"text"`
	Points int    `json:"points"`
}

func ReadQuestions(path string) ([]QuestionRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var records []QuestionRecord
	for i, row := range rows {
		if i == 0 || len(row) < 4 {
			continue
		}
		record := QuestionRecord{
			Kind: normalizeKind(row[0]),
			Text: strings.TrimSpace(row[1]),
		}
		if record.Kind == "" || record.Text == "" {
			continue
		}
		for j := 2; j+1 < len(row); j += 2 {
			text := strings.TrimSpace(row[j])
			if text == "" {
				continue
			}
			points, err := strconv.Atoi(strings.TrimSpace(row[j+1]))
			if err != nil || points < 0 {
				return nil, fmt.Errorf("row %d: invalid points %q", i+1, row[j+1])
			}
			record.Answers = append(record.Answers, AnswerRecord{Text: text, Points: points})
		}
		if len(record.Answers) == 0 {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func normalizeKind(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "round", "survey":
		return QuestionKindRound
	case "fast_money", "fastmoney", "fast-money":
		return QuestionKindFastMoney
	}
	return ""
}

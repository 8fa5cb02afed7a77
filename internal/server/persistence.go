package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"family-feud/internal/db"
	"family-feud/internal/game"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errEntryNotFound = errors.New("leaderboard entry not found")

// questionBank draws random questions from the questions table.
type questionBank struct {
	conn *gorm.DB
}

func newQuestionBank(conn *gorm.DB) *questionBank {
	return &questionBank{conn: conn}
}

func (q *questionBank) Questions(ctx context.Context, rounds, fastMoney int) ([]game.Question, []game.Question, error) {
	roundQuestions, err := q.pick(ctx, db.QuestionKindRound, rounds)
	if err != nil {
		return nil, nil, err
	}
	if len(roundQuestions) == 0 {
		return nil, nil, game.ErrNoQuestions
	}
	fastMoneyQuestions, err := q.pick(ctx, db.QuestionKindFastMoney, fastMoney)
	if err != nil {
		return nil, nil, err
	}
	return roundQuestions, fastMoneyQuestions, nil
}

func (q *questionBank) pick(ctx context.Context, kind string, n int) ([]game.Question, error) {
	if n <= 0 {
		return nil, nil
	}
	var records []db.Question
	if err := q.conn.WithContext(ctx).
		Where("kind = ?", kind).
		Order("random()").
		Limit(n).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load %s questions: %w", kind, err)
	}
	questions := make([]game.Question, 0, len(records))
	for _, record := range records {
		question, err := toGameQuestion(record)
		if err != nil {
			log.Warn().Err(err).Uint("question_id", record.ID).Msg("skipping question")
			continue
		}
		questions = append(questions, question)
	}
	return questions, nil
}

func toGameQuestion(record db.Question) (game.Question, error) {
	var answers []game.SurveyAnswer
	if err := json.Unmarshal(record.Answers, &answers); err != nil {
		return game.Question{}, err
	}
	if len(answers) == 0 {
		return game.Question{}, errors.New("question has no answers")
	}
	return game.Question{
		ID:      fmt.Sprintf("q-%d", record.ID),
		Text:    record.Text,
		Answers: answers,
	}, nil
}

// resultsRecorder archives a finished game and folds it into the
// leaderboard in one transaction.
type resultsRecorder struct {
	conn *gorm.DB
}

type leaderboardDelta struct {
	AccountID string
	Username  string
	Won       bool
	Lost      bool
	Points    int
}

// leaderboardDeltas skips guests and players without a team. On a tie
// nobody is credited a win or a loss.
func leaderboardDeltas(players []game.PlayerView, winner game.TeamID, teams []game.TeamView) []leaderboardDelta {
	totals := make(map[game.TeamID]int, len(teams))
	for _, team := range teams {
		totals[team.ID] = team.TotalScore
	}
	var deltas []leaderboardDelta
	for _, player := range players {
		if isGuest(player.AccountID) || !player.TeamID.Valid() {
			continue
		}
		deltas = append(deltas, leaderboardDelta{
			AccountID: player.AccountID,
			Username:  player.Name,
			Won:       winner != "" && player.TeamID == winner,
			Lost:      winner != "" && player.TeamID != winner,
			Points:    totals[player.TeamID],
		})
	}
	return deltas
}

// gameRecord builds the archive row from the results alone; the live
// session may already have moved on to a new game.
func gameRecord(results game.GameResults) (db.Game, error) {
	totals, err := json.Marshal(results.Teams)
	if err != nil {
		return db.Game{}, err
	}
	finishedAt := results.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}
	return db.Game{
		SessionID:   results.SessionID,
		JoinCode:    results.Code,
		WinningTeam: string(results.Winner),
		EndReason:   string(results.EndReason),
		TeamTotals:  datatypes.JSON(totals),
		FinishedAt:  finishedAt.UTC(),
	}, nil
}

func (r *resultsRecorder) RecordResults(ctx context.Context, results game.GameResults) error {
	record, err := gameRecord(results)
	if err != nil {
		return err
	}
	deltas := leaderboardDeltas(results.Players, results.Winner, results.Teams)
	err = r.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Already archived; leave the leaderboard untouched.
			return nil
		}
		for _, delta := range deltas {
			if err := upsertLeaderboard(tx, delta); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record results: %w", err)
	}
	return nil
}

func upsertLeaderboard(tx *gorm.DB, delta leaderboardDelta) error {
	entry := db.LeaderboardEntry{
		AccountID:   delta.AccountID,
		Username:    delta.Username,
		Played:      1,
		TotalPoints: delta.Points,
	}
	if delta.Won {
		entry.Wins = 1
	}
	if delta.Lost {
		entry.Losses = 1
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"played":       gorm.Expr("leaderboard_entries.played + EXCLUDED.played"),
			"wins":         gorm.Expr("leaderboard_entries.wins + EXCLUDED.wins"),
			"losses":       gorm.Expr("leaderboard_entries.losses + EXCLUDED.losses"),
			"total_points": gorm.Expr("leaderboard_entries.total_points + EXCLUDED.total_points"),
			"updated_at":   gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(&entry).Error
}

type leaderboardRow struct {
	AccountID   string `json:"accountId"`
	Username    string `json:"username"`
	Played      int    `json:"played"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	TotalPoints int    `json:"totalPoints"`
}

func toLeaderboardRow(entry db.LeaderboardEntry) leaderboardRow {
	return leaderboardRow{
		AccountID:   entry.AccountID,
		Username:    entry.Username,
		Played:      entry.Played,
		Wins:        entry.Wins,
		Losses:      entry.Losses,
		TotalPoints: entry.TotalPoints,
	}
}

func topEntries(ctx context.Context, conn *gorm.DB, limit int) ([]leaderboardRow, error) {
	var entries []db.LeaderboardEntry
	if err := conn.WithContext(ctx).
		Order("total_points DESC").
		Order("wins DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	rows := make([]leaderboardRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, toLeaderboardRow(entry))
	}
	return rows, nil
}

func playerRank(ctx context.Context, conn *gorm.DB, accountID string) (leaderboardRow, int, error) {
	var entry db.LeaderboardEntry
	err := conn.WithContext(ctx).Where("account_id = ?", accountID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaderboardRow{}, 0, errEntryNotFound
	}
	if err != nil {
		return leaderboardRow{}, 0, err
	}
	var ahead int64
	if err := conn.WithContext(ctx).
		Model(&db.LeaderboardEntry{}).
		Where("total_points > ?", entry.TotalPoints).
		Count(&ahead).Error; err != nil {
		return leaderboardRow{}, 0, err
	}
	return toLeaderboardRow(entry), int(ahead) + 1, nil
}

package main

import (
	"encoding/json"
	"time"

	"family-feud/internal/config"
	"family-feud/internal/db"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"gorm.io/datatypes"
)

func main() {
	filePath := pflag.StringP("file", "f", "questions.csv", "path to questions csv")
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	pflag.Parse()

	conn, err := db.Open(cfg.DatabaseURL, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	records, err := db.ReadQuestions(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("failed to read questions")
	}

	inserted, skipped := 0, 0
	for _, record := range records {
		answers, err := json.Marshal(record.Answers)
		if err != nil {
			log.Fatal().Err(err).Msg("encode answers")
		}
		entry := db.Question{
			Kind:    record.Kind,
			Text:    record.Text,
			Answers: datatypes.JSON(answers),
		}
		if err := conn.Create(&entry).Error; err != nil {
			if db.IsUniqueViolation(err) {
				skipped++
				continue
			}
			log.Fatal().Err(err).Str("question", record.Text).Msg("failed to insert question")
		}
		inserted++
	}

	log.Info().Int("inserted", inserted).Int("skipped", skipped).Msg("loaded questions")
}

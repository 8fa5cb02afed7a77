package db

import (
	"time"

	"gorm.io/datatypes"
)

const (
	QuestionKindRound     = "round"
	QuestionKindFastMoney = "fast_money"
)

type Question struct {
	ID        uint           `gorm:"primaryKey"`
	Kind      string         `gorm:"size:16;not null;index;uniqueIndex:idx_questions_kind_text"`
	Text      string         `gorm:"size:280;not null;uniqueIndex:idx_questions_kind_text"`
	Answers   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

package db

import (
	"time"

	"gorm.io/datatypes"
)

type Event struct {
	ID         uint           `gorm:"primaryKey"`
	SessionID  string         `gorm:"size:64;not null;index"`
	Type       string         `gorm:"size:64;not null"`
	PlayerID   string         `gorm:"size:64"`
	TeamID     string         `gorm:"size:16"`
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	OccurredAt time.Time      `gorm:"not null;index"`
	CreatedAt  time.Time      `gorm:"not null"`
}

func (Event) TableName() string {
	return "game_events"
}

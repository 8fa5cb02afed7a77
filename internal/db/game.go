package db

import (
	"time"

	"gorm.io/datatypes"
)

// Game is the archived result of one finished game.
type Game struct {
	ID          uint           `gorm:"primaryKey"`
	SessionID   string         `gorm:"size:64;not null;index"`
	JoinCode    string         `gorm:"size:12;not null;uniqueIndex:idx_games_code_finished"`
	WinningTeam string         `gorm:"size:16"`
	EndReason   string         `gorm:"size:16"`
	TeamTotals  datatypes.JSON `gorm:"type:jsonb;not null"`
	FinishedAt  time.Time      `gorm:"not null;uniqueIndex:idx_games_code_finished"`
	CreatedAt   time.Time      `gorm:"not null"`
}

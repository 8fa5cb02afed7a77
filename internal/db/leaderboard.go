package db

import "time"

type LeaderboardEntry struct {
	ID          uint      `gorm:"primaryKey"`
	AccountID   string    `gorm:"size:64;not null;uniqueIndex"`
	Username    string    `gorm:"size:64;not null"`
	Played      int       `gorm:"not null;default:0"`
	Wins        int       `gorm:"not null;default:0"`
	Losses      int       `gorm:"not null;default:0"`
	TotalPoints int       `gorm:"not null;default:0;index"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

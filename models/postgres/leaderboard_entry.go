package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
 * 'LeaderboardEntry' records a finished run. One row per submission, ordered
 * by score when queried; Stats holds whatever extra numbers the client wants
 * to remember about the run (duration, placement, map size).
 */
type LeaderboardEntry struct {
	ID              string         `gorm:"primaryKey;size:36;not null"`
	PlayerName      string         `gorm:"size:50;not null;index:idx_leaderboard_player"`
	Score           int            `gorm:"not null;index:idx_leaderboard_score,sort:desc"`
	DurationSeconds float64        `gorm:"default:0"`
	Stats           datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	CreatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
}

func (e *LeaderboardEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*
 * 'GameSession' is one run of the game, scoped to one lobby. A lobby has at
 * most one active (EndedAt == nil) session at a time; a session transitions
 * from active to ended exactly once and is never reopened.
 */
type GameSession struct {
	ID           string     `gorm:"primaryKey;size:36;not null"`
	LobbyID      string     `gorm:"size:36;not null;index:idx_game_sessions_lobby"`
	WinningScore int        `gorm:"default:10;not null"`
	MapWidth     int        `gorm:"default:1080;not null"`
	MapHeight    int        `gorm:"default:1080;not null"`
	StartedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP"`
	EndedAt      *time.Time `gorm:"index"`

	// Relationship with the lobby the session was started from
	Lobby Lobby `gorm:"foreignKey:LobbyID"`
}

// Active reports whether the session is still running.
func (s *GameSession) Active() bool {
	return s.EndedAt == nil
}

func (s *GameSession) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

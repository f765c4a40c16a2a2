package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*
 * 'LobbyPlayer' represents a player registered in a lobby. Player names are
 * globally unique (the leaderboard keys on them), so a join with a taken
 * name must fail at creation time.
 */
type LobbyPlayer struct {
	ID         string    `gorm:"primaryKey;size:36;not null"`
	PlayerName string    `gorm:"size:50;not null;uniqueIndex"`
	LobbyID    string    `gorm:"size:36;not null;index"`
	JoinedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationship with the owning lobby
	Lobby Lobby `gorm:"foreignKey:LobbyID"`
}

func (p *LobbyPlayer) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

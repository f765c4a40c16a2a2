package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*
 * 'Lobby' is a pre-game grouping of players awaiting session start.
 * The creator becomes the owner; ownership is never transferred. The full
 * UUID is shareable, but the first 5 characters are enough to join.
 */
type Lobby struct {
	ID            string    `gorm:"primaryKey;size:36;not null"`
	OwnerPlayerID *string   `gorm:"size:36;index:idx_lobbies_owner"` // FK to LobbyPlayer, set once the owner row exists
	MaxPlayers    int       `gorm:"default:4;not null"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationship with players waiting in the lobby
	Players []*LobbyPlayer `gorm:"foreignKey:LobbyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// ShortCodeLength is how many leading characters of a lobby id players
// actually share with each other.
const ShortCodeLength = 5

// ShortCode returns the prefix of the lobby id used for friendly sharing.
func (l *Lobby) ShortCode() string {
	if len(l.ID) < ShortCodeLength {
		return l.ID
	}
	return l.ID[:ShortCodeLength]
}

// BeforeCreate assigns a fresh UUID unless the caller already set one.
func (l *Lobby) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

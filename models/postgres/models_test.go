package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLobbyShortCode(t *testing.T) {
	lobby := Lobby{ID: "a1b2c3d4-e5f6-7890-abcd-ef1234567890"}
	assert.Equal(t, "a1b2c", lobby.ShortCode())
	assert.Len(t, lobby.ShortCode(), ShortCodeLength)

	// Degenerate ids fall back to the whole id.
	short := Lobby{ID: "ab"}
	assert.Equal(t, "ab", short.ShortCode())
}

func TestGameSessionActive(t *testing.T) {
	session := GameSession{}
	assert.True(t, session.Active())

	now := time.Now()
	session.EndedAt = &now
	assert.False(t, session.Active())
}

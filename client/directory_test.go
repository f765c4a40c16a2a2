package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"noodleio/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLobbyWithOwnerStoresToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/lobby":
			var req map[string]any
			json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "alice", req["player_name"])

			json.NewEncoder(w).Encode(map[string]any{
				"lobby_id":    "lobby-1",
				"share_code":  "lobby",
				"max_players": 4,
				"player_id":   "player-1",
				"token":       "tok-123",
			})
		case r.Method == http.MethodDelete && r.URL.Path == "/auth/lobby/leave":
			gotAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(map[string]any{"left": true, "was_owner": true})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := NewDirectory(srv.URL)

	lobby, player, err := dir.CreateLobbyWithOwner("alice", 4)
	require.NoError(t, err)
	assert.Equal(t, "lobby-1", lobby.ID)
	assert.Equal(t, "player-1", lobby.OwnerPlayerID)
	assert.Equal(t, "alice", player.Name)
	assert.Equal(t, "tok-123", dir.Token())

	// The token rides along on authenticated calls.
	left, wasOwner, err := dir.LeaveLobby("player-1")
	require.NoError(t, err)
	assert.True(t, left)
	assert.True(t, wasOwner)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestErrorTaxonomyMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lobby/missing":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "lobby not found"})
		case "/lobby/full/join":
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": "lobby is full"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
		}
	}))
	defer srv.Close()

	dir := NewDirectory(srv.URL)

	_, err := dir.GetLobbyByID("missing")
	assert.True(t, game.IsNotFound(err))

	_, err = dir.JoinLobby("bob", "full")
	assert.True(t, game.IsValidation(err))
	assert.Contains(t, err.Error(), "full")

	_, err = dir.GetTopLeaderboard(10)
	assert.True(t, game.IsTransport(err))
}

func TestGetActiveSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lobby/lobby-1/session":
			json.NewEncoder(w).Encode(map[string]any{
				"status":     "Active session found - session_id: session-1",
				"session_id": "session-1",
			})
		case "/session/session-1":
			json.NewEncoder(w).Encode(map[string]any{
				"session_id":    "session-1",
				"lobby_id":      "lobby-1",
				"winning_score": 10,
				"map_width":     1080,
				"map_height":    1080,
				"ended_at":      nil,
			})
		case "/lobby/idle/session":
			json.NewEncoder(w).Encode(map[string]any{"status": "No active game session found"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := NewDirectory(srv.URL)

	session, err := dir.GetActiveSession("lobby-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", session.ID)
	assert.Equal(t, 10, session.WinningScore)
	assert.Equal(t, 1080.0, session.MapWidth)
	assert.False(t, session.Ended)

	_, err = dir.GetActiveSession("idle")
	assert.True(t, game.IsNotFound(err))
}

// Package client implements the game package's backend ports over the REST
// API and the WebSocket session feed.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"noodleio/game"
)

// Directory talks to the lobby/session/leaderboard REST API and implements
// game.SessionDirectory. It keeps the player token issued on create/join and
// sends it on the authenticated endpoints.
type Directory struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	token string
}

func NewDirectory(baseURL string) *Directory {
	return &Directory{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Token returns the player token from the last create or join.
func (d *Directory) Token() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token
}

func (d *Directory) setToken(t string) {
	d.mu.Lock()
	d.token = t
	d.mu.Unlock()
}

func (d *Directory) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, d.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := d.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeAPIError maps the server's status codes onto the client-side error
// taxonomy: 404 is NotFound, 400/403/409 are validation refusals, everything
// else is a transport failure.
func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return &game.NotFoundError{What: msg}
	case http.StatusBadRequest, http.StatusForbidden, http.StatusConflict:
		return &game.ValidationError{Reason: msg}
	default:
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, msg)
	}
}

func (d *Directory) CreateLobbyWithOwner(playerName string, maxPlayers int) (*game.Lobby, *game.LobbyPlayer, error) {
	var resp struct {
		LobbyID    string `json:"lobby_id"`
		ShareCode  string `json:"share_code"`
		MaxPlayers int    `json:"max_players"`
		PlayerID   string `json:"player_id"`
		Token      string `json:"token"`
	}
	body := map[string]any{"player_name": playerName, "max_players": maxPlayers}
	if err := d.do(http.MethodPost, "/lobby", body, &resp); err != nil {
		return nil, nil, err
	}

	d.setToken(resp.Token)
	lobby := &game.Lobby{
		ID:            resp.LobbyID,
		MaxPlayers:    resp.MaxPlayers,
		OwnerPlayerID: resp.PlayerID,
		ShareCode:     resp.ShareCode,
	}
	player := &game.LobbyPlayer{
		ID:       resp.PlayerID,
		Name:     playerName,
		LobbyID:  resp.LobbyID,
		JoinedAt: time.Now(),
	}
	return lobby, player, nil
}

func (d *Directory) GetLobbyByID(idOrPrefix string) (*game.Lobby, error) {
	var resp struct {
		LobbyID       string `json:"lobby_id"`
		ShareCode     string `json:"share_code"`
		MaxPlayers    int    `json:"max_players"`
		OwnerPlayerID string `json:"owner_player_id"`
	}
	if err := d.do(http.MethodGet, "/lobby/"+url.PathEscape(idOrPrefix), nil, &resp); err != nil {
		return nil, err
	}
	return &game.Lobby{
		ID:            resp.LobbyID,
		MaxPlayers:    resp.MaxPlayers,
		OwnerPlayerID: resp.OwnerPlayerID,
		ShareCode:     resp.ShareCode,
	}, nil
}

func (d *Directory) DeleteLobby(id string) (bool, error) {
	var resp struct {
		Deleted bool `json:"deleted"`
	}
	if err := d.do(http.MethodDelete, "/auth/lobby/"+url.PathEscape(id), nil, &resp); err != nil {
		return false, err
	}
	return resp.Deleted, nil
}

func (d *Directory) JoinLobby(playerName, idOrPrefix string) (*game.LobbyPlayer, error) {
	var resp struct {
		PlayerID string `json:"player_id"`
		LobbyID  string `json:"lobby_id"`
		Token    string `json:"token"`
	}
	body := map[string]any{"player_name": playerName}
	if err := d.do(http.MethodPost, "/lobby/"+url.PathEscape(idOrPrefix)+"/join", body, &resp); err != nil {
		return nil, err
	}

	d.setToken(resp.Token)
	return &game.LobbyPlayer{
		ID:       resp.PlayerID,
		Name:     playerName,
		LobbyID:  resp.LobbyID,
		JoinedAt: time.Now(),
	}, nil
}

func (d *Directory) GetPlayersInLobby(idOrPrefix string) ([]game.LobbyPlayer, error) {
	var resp []struct {
		PlayerID   string    `json:"player_id"`
		PlayerName string    `json:"player_name"`
		JoinedAt   time.Time `json:"joined_at"`
	}
	if err := d.do(http.MethodGet, "/lobby/"+url.PathEscape(idOrPrefix)+"/players", nil, &resp); err != nil {
		return nil, err
	}

	players := make([]game.LobbyPlayer, len(resp))
	for i, p := range resp {
		players[i] = game.LobbyPlayer{ID: p.PlayerID, Name: p.PlayerName, JoinedAt: p.JoinedAt}
	}
	return players, nil
}

func (d *Directory) LeaveLobby(playerID string) (bool, bool, error) {
	var resp struct {
		Left     bool `json:"left"`
		WasOwner bool `json:"was_owner"`
	}
	if err := d.do(http.MethodDelete, "/auth/lobby/leave", nil, &resp); err != nil {
		return false, false, err
	}
	return resp.Left, resp.WasOwner, nil
}

func (d *Directory) StartGameSession(playerID, lobbyIDOrPrefix string, winningScore int, mapWidth, mapHeight float64) (*game.Session, string, error) {
	var resp struct {
		SessionID    string `json:"session_id"`
		LobbyID      string `json:"lobby_id"`
		WinningScore int    `json:"winning_score"`
		MapWidth     int    `json:"map_width"`
		MapHeight    int    `json:"map_height"`
		Message      string `json:"message"`
	}
	body := map[string]any{
		"winning_score": winningScore,
		"map_width":     int(mapWidth),
		"map_height":    int(mapHeight),
	}
	err := d.do(http.MethodPost, "/auth/lobby/"+url.PathEscape(lobbyIDOrPrefix)+"/start", body, &resp)
	if err != nil {
		return nil, err.Error(), err
	}

	return &game.Session{
		ID:           resp.SessionID,
		LobbyID:      resp.LobbyID,
		WinningScore: resp.WinningScore,
		MapWidth:     float64(resp.MapWidth),
		MapHeight:    float64(resp.MapHeight),
	}, resp.Message, nil
}

func (d *Directory) CheckActiveGameSession(idOrPrefix string) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := d.do(http.MethodGet, "/lobby/"+url.PathEscape(idOrPrefix)+"/session", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (d *Directory) GetActiveSession(idOrPrefix string) (*game.Session, error) {
	var resp struct {
		Status    string `json:"status"`
		SessionID string `json:"session_id"`
	}
	if err := d.do(http.MethodGet, "/lobby/"+url.PathEscape(idOrPrefix)+"/session", nil, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, &game.NotFoundError{What: "active session"}
	}
	return d.GetGameSession(resp.SessionID)
}

// GetGameSession fetches one session record by id.
func (d *Directory) GetGameSession(sessionID string) (*game.Session, error) {
	var resp struct {
		SessionID    string     `json:"session_id"`
		LobbyID      string     `json:"lobby_id"`
		WinningScore int        `json:"winning_score"`
		MapWidth     int        `json:"map_width"`
		MapHeight    int        `json:"map_height"`
		EndedAt      *time.Time `json:"ended_at"`
	}
	if err := d.do(http.MethodGet, "/session/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return nil, err
	}
	return &game.Session{
		ID:           resp.SessionID,
		LobbyID:      resp.LobbyID,
		WinningScore: resp.WinningScore,
		MapWidth:     float64(resp.MapWidth),
		MapHeight:    float64(resp.MapHeight),
		Ended:        resp.EndedAt != nil,
	}, nil
}

func (d *Directory) AddLeaderboardEntry(name string, score int, durationSeconds float64) (*game.LeaderboardEntry, error) {
	var resp struct {
		PlayerName string `json:"player_name"`
		Score      int    `json:"score"`
	}
	body := map[string]any{
		"player_name":      name,
		"score":            score,
		"duration_seconds": durationSeconds,
	}
	if err := d.do(http.MethodPost, "/leaderboard", body, &resp); err != nil {
		return nil, err
	}
	return &game.LeaderboardEntry{
		PlayerName:      resp.PlayerName,
		Score:           resp.Score,
		DurationSeconds: durationSeconds,
	}, nil
}

func (d *Directory) GetTopLeaderboard(limit int) ([]game.LeaderboardEntry, error) {
	var resp []struct {
		PlayerName      string  `json:"player_name"`
		Score           int     `json:"score"`
		DurationSeconds float64 `json:"duration_seconds"`
	}
	path := fmt.Sprintf("/leaderboard?limit=%d", limit)
	if err := d.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	entries := make([]game.LeaderboardEntry, len(resp))
	for i, e := range resp {
		entries[i] = game.LeaderboardEntry{
			PlayerName:      e.PlayerName,
			Score:           e.Score,
			DurationSeconds: e.DurationSeconds,
		}
	}
	return entries, nil
}

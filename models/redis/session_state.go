package redis

// SessionState mirrors the live parts of a game session so the realtime
// layer can bounds-check moves and detect the win condition without a
// database round-trip per command.
type SessionState struct {
	SessionID    string `json:"session_id"`
	LobbyID      string `json:"lobby_id"`
	WinningScore int    `json:"winning_score"`
	MapWidth     int    `json:"map_width"`
	MapHeight    int    `json:"map_height"`
	Ended        bool   `json:"ended"`
}

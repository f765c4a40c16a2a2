package redis

// PlayerGameState is the authoritative per-player state for one session.
// The server is the only writer; clients request mutations through the
// discrete move commands and treat whatever they read back as the truth.
type PlayerGameState struct {
	PlayerID  string  `json:"player_id"`  // Matches lobby_players.id
	SessionID string  `json:"session_id"` // Matches game_sessions.id
	XPos      float64 `json:"x_pos"`      // [0, map_width]
	YPos      float64 `json:"y_pos"`      // [0, map_height]
	Score     int     `json:"score"`      // Monotonically non-decreasing while active
}

package game

import "time"

// Lobby mirrors the backend lobby record as seen by the client.
type Lobby struct {
	ID            string
	MaxPlayers    int
	OwnerPlayerID string
	ShareCode     string
}

// LobbyPlayer mirrors a backend lobby membership record.
type LobbyPlayer struct {
	ID       string
	Name     string
	LobbyID  string
	JoinedAt time.Time
}

// Session mirrors a backend game session record.
type Session struct {
	ID           string
	LobbyID      string
	WinningScore int
	MapWidth     float64
	MapHeight    float64
	Ended        bool
}

// PlayerState is one authoritative position/score sample for a player.
type PlayerState struct {
	PlayerID  string
	SessionID string
	Pos       Vec2
	Score     int
}

// LeaderboardEntry is one persisted run result.
type LeaderboardEntry struct {
	PlayerName      string
	Score           int
	DurationSeconds float64
}

// SessionDirectory is the remote lobby/session/leaderboard store. Every call
// can fail with a ValidationError, a NotFoundError, or a transport error.
type SessionDirectory interface {
	CreateLobbyWithOwner(playerName string, maxPlayers int) (*Lobby, *LobbyPlayer, error)
	GetLobbyByID(idOrPrefix string) (*Lobby, error)
	DeleteLobby(id string) (bool, error)
	JoinLobby(playerName, idOrPrefix string) (*LobbyPlayer, error)
	GetPlayersInLobby(idOrPrefix string) ([]LobbyPlayer, error)
	LeaveLobby(playerID string) (left bool, wasOwner bool, err error)
	StartGameSession(playerID, lobbyIDOrPrefix string, winningScore int, mapWidth, mapHeight float64) (*Session, string, error)
	CheckActiveGameSession(idOrPrefix string) (string, error)
	GetActiveSession(idOrPrefix string) (*Session, error)
	AddLeaderboardEntry(name string, score int, durationSeconds float64) (*LeaderboardEntry, error)
	GetTopLeaderboard(limit int) ([]LeaderboardEntry, error)
}

// Mover sends discrete directional move commands for a player. A returned
// error means the command was not transmitted; it is never retried, the next
// drift evaluation re-issues one if still needed.
type Mover interface {
	MovePlayerUp(playerID, sessionID string) error
	MovePlayerDown(playerID, sessionID string) error
	MovePlayerLeft(playerID, sessionID string) error
	MovePlayerRight(playerID, sessionID string) error
}

// PositionChannel is the authoritative position feed. Connect subscribes to
// one session; pushed events land on the queue handed to the implementation
// and are drained once per frame. Disconnect is idempotent and safe to call
// before Connect.
type PositionChannel interface {
	Mover
	Connect(sessionID, playerID string) error
	Disconnect() error
}

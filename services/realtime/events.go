package realtime

import redis_models "noodleio/models/redis"

// Wire format for the position feed. Everything is a small JSON envelope
// tagged by Type; clients ignore types they do not know.

const (
	EventPlayerState = "player_state"
	EventWorldState  = "world_state"
	EventSession     = "session"
	EventGameOver    = "game_over"
	EventFood        = "food"
	EventMoveResult  = "move_result"
)

// ServerEvent is one push from the feed. Exactly one payload field is set,
// according to Type. A player_state is an incremental update for one
// player; a world_state lists every player in the session and doubles as
// the membership roster.
type ServerEvent struct {
	Type        string                          `json:"type"`
	PlayerState *redis_models.PlayerGameState   `json:"player_state,omitempty"`
	Players     []*redis_models.PlayerGameState `json:"players,omitempty"`
	Session     *redis_models.SessionState      `json:"session,omitempty"`
	Food        *FoodState                      `json:"food,omitempty"`
	MoveResult  *MoveResult                     `json:"move_result,omitempty"`
}

// FoodState is where the current pickup sits on the map.
type FoodState struct {
	XPos float64 `json:"x_pos"`
	YPos float64 `json:"y_pos"`
}

// MoveResult acknowledges one discrete move command.
type MoveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ClientMessage is what a connected player may send: a discrete move
// command, one of "up", "down", "left", "right".
// Example: {"type":"move","command":"up"}
type ClientMessage struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

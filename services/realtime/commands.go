package realtime

import (
	"fmt"

	redis_models "noodleio/models/redis"
)

// MoveStep is how far one discrete move command shifts the authoritative
// position, in map units. The client's drift threshold equals one step, so
// one command corrects exactly one quantum of drift.
const MoveStep = 8.0

// PickupRadius is how close a player must get to the food to score.
const PickupRadius = 16.0

// Direction names accepted on the wire.
const (
	DirUp    = "up"
	DirDown  = "down"
	DirLeft  = "left"
	DirRight = "right"
)

// applyMove executes one move command against the authoritative store.
// The new position is clamped to [0, mapWidth] x [0, mapHeight]; a command
// that cannot change the position (already at the boundary) fails with a
// descriptive message and writes nothing.
func applyMove(store Store, session *redis_models.SessionState, playerID, dir string) (*redis_models.PlayerGameState, *MoveResult, error) {
	state, err := store.GetPlayerGameState(session.SessionID, playerID)
	if err != nil {
		return nil, &MoveResult{Success: false, Message: "Player not found in this game session"}, err
	}

	x, y := state.XPos, state.YPos
	switch dir {
	case DirUp:
		y += MoveStep
	case DirDown:
		y -= MoveStep
	case DirLeft:
		x -= MoveStep
	case DirRight:
		x += MoveStep
	default:
		return nil, &MoveResult{Success: false, Message: fmt.Sprintf("Unknown move command %q", dir)}, nil
	}

	x = clamp(x, 0, float64(session.MapWidth))
	y = clamp(y, 0, float64(session.MapHeight))

	if x == state.XPos && y == state.YPos {
		return nil, &MoveResult{
			Success: false,
			Message: fmt.Sprintf("Cannot move %s: player is at the map boundary", dir),
		}, nil
	}

	state.XPos = x
	state.YPos = y
	if err := store.SavePlayerGameState(state); err != nil {
		return nil, &MoveResult{Success: false, Message: "Error saving player state"}, err
	}

	return state, &MoveResult{Success: true, Message: fmt.Sprintf("Moved %s successfully", dir)}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package directory

import "errors"

// Validation and not-found outcomes are ordinary results of directory calls,
// surfaced as sentinel errors so callers (and the HTTP layer) can translate
// them without string matching. Anything else coming out of a directory call
// is a transport/store failure.
var (
	ErrLobbyNotFound   = errors.New("lobby not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrSessionNotFound = errors.New("game session not found")
	ErrNameTaken       = errors.New("player name is already taken")
	ErrLobbyFull       = errors.New("lobby is full")
	ErrNotOwner        = errors.New("only the lobby owner can start a game session")
	ErrSessionActive   = errors.New("lobby already has an active game session")
	ErrBadMaxPlayers   = errors.New("max players must be at least 1")
)

// IsValidation reports whether err is one of the validation outcomes above
// (as opposed to a store failure).
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrNameTaken),
		errors.Is(err, ErrLobbyFull),
		errors.Is(err, ErrNotOwner),
		errors.Is(err, ErrSessionActive),
		errors.Is(err, ErrBadMaxPlayers):
		return true
	}
	return false
}

// IsNotFound reports whether err is one of the not-found outcomes.
func IsNotFound(err error) bool {
	switch {
	case errors.Is(err, ErrLobbyNotFound),
		errors.Is(err, ErrPlayerNotFound),
		errors.Is(err, ErrSessionNotFound):
		return true
	}
	return false
}

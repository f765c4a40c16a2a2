package game

import "fmt"

// LifecycleState is where the local player stands between menu and game over.
type LifecycleState int

const (
	StateNoLobby LifecycleState = iota
	StateLobbyMember
	StateSessionActive
	StateGameOver
)

func (s LifecycleState) String() string {
	switch s {
	case StateNoLobby:
		return "no_lobby"
	case StateLobbyMember:
		return "lobby_member"
	case StateSessionActive:
		return "session_active"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// LobbyLifecycle tracks the local player's progress through lobby and
// session. Every transition goes through the directory first; on any
// failure the machine keeps its prior state.
type LobbyLifecycle struct {
	dir SessionDirectory

	state   LifecycleState
	isOwner bool
	lobby   *Lobby
	player  *LobbyPlayer
	session *Session
}

func NewLobbyLifecycle(dir SessionDirectory) *LobbyLifecycle {
	return &LobbyLifecycle{dir: dir, state: StateNoLobby}
}

func (l *LobbyLifecycle) State() LifecycleState { return l.state }
func (l *LobbyLifecycle) IsOwner() bool         { return l.isOwner }
func (l *LobbyLifecycle) Lobby() *Lobby         { return l.lobby }
func (l *LobbyLifecycle) Player() *LobbyPlayer  { return l.player }
func (l *LobbyLifecycle) Session() *Session     { return l.session }

// CreateLobby registers a fresh lobby with the caller as its owner and first
// member.
func (l *LobbyLifecycle) CreateLobby(playerName string, maxPlayers int) error {
	if l.state != StateNoLobby {
		return &ValidationError{Reason: fmt.Sprintf("cannot create a lobby while %s", l.state)}
	}

	lobby, player, err := l.dir.CreateLobbyWithOwner(playerName, maxPlayers)
	if err != nil {
		Log.Warnw("lobby creation failed", "player", playerName, "err", err)
		return err
	}
	if lobby == nil || player == nil {
		return &ValidationError{Reason: "directory returned no lobby"}
	}

	l.lobby = lobby
	l.player = player
	l.isOwner = true
	l.state = StateLobbyMember
	return nil
}

// JoinLobby resolves a full id or its 5-character share prefix and registers
// the player as a member.
func (l *LobbyLifecycle) JoinLobby(playerName, lobbyIDOrPrefix string) error {
	if l.state != StateNoLobby {
		return &ValidationError{Reason: fmt.Sprintf("cannot join a lobby while %s", l.state)}
	}

	player, err := l.dir.JoinLobby(playerName, lobbyIDOrPrefix)
	if err != nil {
		Log.Warnw("lobby join failed", "player", playerName, "lobby", lobbyIDOrPrefix, "err", err)
		return err
	}

	lobby, err := l.dir.GetLobbyByID(player.LobbyID)
	if err != nil {
		// Joined but cannot read the lobby back; undo the membership so the
		// machine stays consistent with the backend.
		l.dir.LeaveLobby(player.ID)
		return err
	}

	l.lobby = lobby
	l.player = player
	l.isOwner = false
	l.state = StateLobbyMember
	return nil
}

// LeaveLobby removes the local player. When the player owns the lobby the
// backend deletes the whole lobby as part of the same call; there is no
// ownership hand-off.
func (l *LobbyLifecycle) LeaveLobby() (wasOwner bool, err error) {
	if l.state == StateNoLobby || l.player == nil {
		return false, nil
	}

	_, wasOwner, err = l.dir.LeaveLobby(l.player.ID)
	if err != nil {
		Log.Warnw("lobby leave failed", "player", l.player.ID, "err", err)
		return false, err
	}

	l.reset()
	return wasOwner, nil
}

// StartSession asks the backend to start a game session. Only the owner may
// do this; non-owners receive the backend's descriptive refusal.
func (l *LobbyLifecycle) StartSession(winningScore int, mapWidth, mapHeight float64) (*Session, error) {
	if l.state != StateLobbyMember || l.lobby == nil || l.player == nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("cannot start a session while %s", l.state)}
	}

	session, message, err := l.dir.StartGameSession(l.player.ID, l.lobby.ID, winningScore, mapWidth, mapHeight)
	if err != nil {
		Log.Warnw("session start failed", "lobby", l.lobby.ID, "message", message, "err", err)
		return nil, err
	}
	if session == nil {
		return nil, &ValidationError{Reason: message}
	}

	l.session = session
	l.state = StateSessionActive
	return session, nil
}

// OnSessionStarted is how non-owner members enter the session once they
// discover it, by polling or via a session-change push.
func (l *LobbyLifecycle) OnSessionStarted(session *Session) {
	if l.state != StateLobbyMember || session == nil || session.Ended {
		return
	}
	l.session = session
	l.state = StateSessionActive
}

// OnGameOver marks the session finished. Idempotent.
func (l *LobbyLifecycle) OnGameOver() {
	if l.state == StateSessionActive {
		l.state = StateGameOver
	}
}

// ReturnToMenu drops all lobby and session references.
func (l *LobbyLifecycle) ReturnToMenu() {
	l.reset()
}

func (l *LobbyLifecycle) reset() {
	l.state = StateNoLobby
	l.isOwner = false
	l.lobby = nil
	l.player = nil
	l.session = nil
}

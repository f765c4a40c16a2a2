package game

const (
	// gameOverLinger keeps the final frame on screen briefly before swapping
	// to the results scene.
	gameOverLinger = 2.0
	// lobbyPollInterval is how often non-owners ask the directory whether the
	// session has started, in seconds.
	lobbyPollInterval = 1.0
)

// App bundles what every scene needs: the owned scene stack, the directory
// client, the lifecycle machine and a factory for position-feed connections.
// It is passed by handle; there is no ambient global.
type App struct {
	Stack     *StateStack
	Dir       SessionDirectory
	Lifecycle *LobbyLifecycle
	Cfg       Config

	// NewChannel builds a feed connection that pushes its events onto the
	// given queue. One channel per session; the play scene owns it.
	NewChannel func(queue *EventQueue) PositionChannel
}

func NewApp(dir SessionDirectory, newChannel func(*EventQueue) PositionChannel) *App {
	app := &App{
		Stack:      NewStateStack(),
		Dir:        dir,
		Lifecycle:  NewLobbyLifecycle(dir),
		Cfg:        DefaultConfig(),
		NewChannel: newChannel,
	}
	app.Stack.Push(NewMenuScene(app))
	return app
}

// Update ticks the top scene once per rendered frame.
func (a *App) Update(dt float64) {
	a.Stack.Update(dt)
}

// LaunchSession swaps the play scene in for a freshly started or discovered
// session.
func (a *App) LaunchSession(session *Session) {
	if session == nil {
		return
	}
	queue := NewEventQueue(0)
	var ch PositionChannel
	if a.NewChannel != nil {
		ch = a.NewChannel(queue)
	}
	a.Stack.Replace(NewPlayScene(a, ch, queue))
}

// MenuScene is the entry screen: create a lobby or join one by share code.
type MenuScene struct {
	app *App

	// LastError carries the most recent failed action's message for display.
	LastError string
}

func NewMenuScene(app *App) *MenuScene {
	return &MenuScene{app: app}
}

func (s *MenuScene) Name() string      { return "menu" }
func (s *MenuScene) Enter()            {}
func (s *MenuScene) Exit()             {}
func (s *MenuScene) Update(dt float64) {}

// CreateLobby creates a lobby owned by playerName and moves to the lobby
// scene. A failure leaves the menu up with the reason recorded.
func (s *MenuScene) CreateLobby(playerName string, maxPlayers int) {
	if err := s.app.Lifecycle.CreateLobby(playerName, maxPlayers); err != nil {
		s.LastError = err.Error()
		return
	}
	s.LastError = ""
	s.app.Stack.Push(NewLobbyScene(s.app))
}

// JoinLobby joins by full id or 5-character share code.
func (s *MenuScene) JoinLobby(playerName, lobbyIDOrPrefix string) {
	if err := s.app.Lifecycle.JoinLobby(playerName, lobbyIDOrPrefix); err != nil {
		s.LastError = err.Error()
		return
	}
	s.LastError = ""
	s.app.Stack.Push(NewLobbyScene(s.app))
}

// ShowLeaderboard pushes the top-scores screen.
func (s *MenuScene) ShowLeaderboard(limit int) {
	s.app.Stack.Push(NewLeaderboardScene(s.app, limit))
}

// LobbyScene shows the member list while waiting for the owner to start.
// Non-owners poll the directory for a session on a fixed cadence.
type LobbyScene struct {
	app *App

	Players   []LobbyPlayer
	LastError string

	pollAccum float64
}

func NewLobbyScene(app *App) *LobbyScene {
	return &LobbyScene{app: app}
}

func (s *LobbyScene) Name() string { return "lobby" }

func (s *LobbyScene) Enter() {
	s.refreshPlayers()
}

func (s *LobbyScene) Exit() {}

func (s *LobbyScene) Update(dt float64) {
	if s.app.Lifecycle.State() != StateLobbyMember {
		return
	}

	s.pollAccum += dt
	if s.pollAccum < lobbyPollInterval {
		return
	}
	s.pollAccum -= lobbyPollInterval

	s.refreshPlayers()

	// The owner enters the session through StartGame; everyone else discovers
	// it here.
	if !s.app.Lifecycle.IsOwner() {
		session, err := s.app.Dir.GetActiveSession(s.app.Lifecycle.Lobby().ID)
		if err != nil {
			if IsTransport(err) {
				Log.Warnw("session poll failed", "err", err)
			}
			return
		}
		s.app.Lifecycle.OnSessionStarted(session)
		s.app.LaunchSession(session)
	}
}

func (s *LobbyScene) refreshPlayers() {
	lobby := s.app.Lifecycle.Lobby()
	if lobby == nil {
		return
	}
	players, err := s.app.Dir.GetPlayersInLobby(lobby.ID)
	if err != nil {
		Log.Warnw("player list refresh failed", "lobby", lobby.ID, "err", err)
		return
	}
	s.Players = players
}

// StartGame is the owner's start button. Refusals from the backend keep the
// lobby scene up with the reason recorded.
func (s *LobbyScene) StartGame(winningScore int, mapWidth, mapHeight float64) {
	session, err := s.app.Lifecycle.StartSession(winningScore, mapWidth, mapHeight)
	if err != nil {
		s.LastError = err.Error()
		return
	}
	s.LastError = ""
	s.app.LaunchSession(session)
}

// Leave exits the lobby and returns to the menu. Owners dissolve the lobby
// for everyone.
func (s *LobbyScene) Leave() {
	if _, err := s.app.Lifecycle.LeaveLobby(); err != nil {
		s.LastError = err.Error()
		return
	}
	s.app.Stack.Pop()
}

// PlayScene runs one game session: it drains the feed queue once per frame,
// feeds the movement controller and the remote tracker, and detects game
// over.
type PlayScene struct {
	app     *App
	channel PositionChannel
	queue   *EventQueue

	controller *PredictiveMovementController
	tracker    *RemotePlayerTracker

	localID    string
	localName  string
	localScore int
	session    Session
	elapsed    float64

	over      bool
	linger    float64
	ranking   []RankedPlayer
	placement int
}

func NewPlayScene(app *App, channel PositionChannel, queue *EventQueue) *PlayScene {
	s := &PlayScene{app: app, channel: channel, queue: queue}
	if p := app.Lifecycle.Player(); p != nil {
		s.localID = p.ID
		s.localName = p.Name
	}
	if sess := app.Lifecycle.Session(); sess != nil {
		s.session = *sess
	}
	return s
}

func (s *PlayScene) Name() string { return "play" }

func (s *PlayScene) Enter() {
	s.tracker = NewRemotePlayerTracker(s.app.Cfg, s.localID)

	start := Vec2{X: s.session.MapWidth / 2, Y: s.session.MapHeight / 2}
	s.controller = NewPredictiveMovementController(s.app.Cfg, s.channel, s.localID, s.session.ID,
		s.session.MapWidth, s.session.MapHeight, start)

	if s.channel != nil {
		if err := s.channel.Connect(s.session.ID, s.localID); err != nil {
			Log.Errorw("feed connect failed", "session", s.session.ID, "err", err)
		}
	}
}

// Exit tears the feed down. Disconnect is idempotent, so leaving after a
// game-over teardown is harmless.
func (s *PlayScene) Exit() {
	if s.channel != nil {
		if err := s.channel.Disconnect(); err != nil {
			Log.Debugw("feed disconnect", "err", err)
		}
	}
}

func (s *PlayScene) Update(dt float64) {
	s.elapsed += dt

	events := s.queue.Drain()
	for _, ev := range events {
		switch ev.Kind {
		case EventPositionUpdated:
			// Incremental: one player's move. Never prunes; a player who is
			// idle this frame is still in the session.
			s.applyState(ev.State)
		case EventWorldState:
			// Full membership snapshot; the only event that prunes.
			for _, st := range ev.States {
				s.applyState(st)
			}
			s.tracker.ApplyBatch(ev.States)
		case EventSessionChanged:
			if ev.Session != nil {
				s.session = *ev.Session
			}
		case EventGameOver:
			s.handleGameOver()
		}
	}

	s.controller.Update(dt)

	if s.over {
		s.linger -= dt
		if s.linger <= 0 {
			s.app.Stack.Replace(NewGameOverScene(s.app, s.ranking, s.placement))
		}
	}
}

func (s *PlayScene) applyState(state *PlayerState) {
	if state == nil {
		return
	}
	if state.PlayerID == s.localID {
		s.controller.ApplyAuthoritative(state)
		s.localScore = state.Score
		return
	}
	s.tracker.Apply(state)
}

// SetPointer feeds the frame's pointer position, already in map coordinates,
// and whether movement is requested.
func (s *PlayScene) SetPointer(target Vec2, active bool) {
	if s.over {
		return
	}
	s.controller.SetTarget(target)
	s.controller.SetActive(active)
}

// PickUpSpeedBoost arms the speed power-up.
func (s *PlayScene) PickUpSpeedBoost() {
	s.controller.ActivateBoost()
}

// Tracker exposes remote-player state for rendering.
func (s *PlayScene) Tracker() *RemotePlayerTracker {
	return s.tracker
}

// Controller exposes the local movement controller for rendering.
func (s *PlayScene) Controller() *PredictiveMovementController {
	return s.controller
}

// handleGameOver runs once per session no matter how many game_over events
// arrive: commands stop, the feed is torn down, the final ranking is
// computed and the local result is submitted to the leaderboard.
func (s *PlayScene) handleGameOver() {
	if s.over {
		return
	}
	s.over = true
	s.linger = gameOverLinger

	s.controller.Stop()
	s.controller.SetActive(false)
	if s.channel != nil {
		if err := s.channel.Disconnect(); err != nil {
			Log.Debugw("feed disconnect on game over", "err", err)
		}
	}

	s.ranking, s.placement = s.tracker.FinalRanking(s.localID, s.localScore)
	s.app.Lifecycle.OnGameOver()

	if s.localName != "" {
		if _, err := s.app.Dir.AddLeaderboardEntry(s.localName, s.localScore, s.elapsed); err != nil {
			Log.Warnw("leaderboard submit failed", "player", s.localName, "err", err)
		}
	}
}

// Abandon leaves mid-game: feed down, membership dropped, back to the menu
// flow via the end-game screen.
func (s *PlayScene) Abandon() {
	s.controller.Stop()
	if s.channel != nil {
		s.channel.Disconnect()
	}
	if _, err := s.app.Lifecycle.LeaveLobby(); err != nil {
		Log.Warnw("leave on abandon failed", "err", err)
	}
	s.app.Stack.Replace(NewEndGameScene(s.app))
}

// GameOverScene shows the final standings.
type GameOverScene struct {
	app *App

	Ranking   []RankedPlayer
	Placement int
}

func NewGameOverScene(app *App, ranking []RankedPlayer, placement int) *GameOverScene {
	return &GameOverScene{app: app, Ranking: ranking, Placement: placement}
}

func (s *GameOverScene) Name() string      { return "game_over" }
func (s *GameOverScene) Enter()            {}
func (s *GameOverScene) Exit()             {}
func (s *GameOverScene) Update(dt float64) {}

// Continue drops lobby state and returns to the menu.
func (s *GameOverScene) Continue() {
	if s.app.Lifecycle.State() != StateNoLobby {
		s.app.Lifecycle.LeaveLobby()
	}
	s.app.Lifecycle.ReturnToMenu()
	s.app.Stack.Replace(NewMenuScene(s.app))
}

// EndGameScene is the screen after abandoning a session early.
type EndGameScene struct {
	app *App
}

func NewEndGameScene(app *App) *EndGameScene {
	return &EndGameScene{app: app}
}

func (s *EndGameScene) Name() string      { return "end_game" }
func (s *EndGameScene) Enter()            {}
func (s *EndGameScene) Exit()             {}
func (s *EndGameScene) Update(dt float64) {}

func (s *EndGameScene) Continue() {
	s.app.Lifecycle.ReturnToMenu()
	s.app.Stack.Replace(NewMenuScene(s.app))
}

// LeaderboardScene shows the global top scores.
type LeaderboardScene struct {
	app   *App
	limit int

	Entries   []LeaderboardEntry
	LastError string
}

func NewLeaderboardScene(app *App, limit int) *LeaderboardScene {
	return &LeaderboardScene{app: app, limit: limit}
}

func (s *LeaderboardScene) Name() string { return "leaderboard" }

func (s *LeaderboardScene) Enter() {
	entries, err := s.app.Dir.GetTopLeaderboard(s.limit)
	if err != nil {
		s.LastError = err.Error()
		return
	}
	s.Entries = entries
}

func (s *LeaderboardScene) Exit()             {}
func (s *LeaderboardScene) Update(dt float64) {}

func (s *LeaderboardScene) Back() {
	s.app.Stack.Pop()
}

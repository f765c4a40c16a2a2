package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMover counts the discrete commands a controller emits.
type recordingMover struct {
	commands []string
	err      error
}

func (m *recordingMover) record(dir string) error {
	m.commands = append(m.commands, dir)
	return m.err
}

func (m *recordingMover) MovePlayerUp(playerID, sessionID string) error {
	return m.record("up")
}

func (m *recordingMover) MovePlayerDown(playerID, sessionID string) error {
	return m.record("down")
}

func (m *recordingMover) MovePlayerLeft(playerID, sessionID string) error {
	return m.record("left")
}

func (m *recordingMover) MovePlayerRight(playerID, sessionID string) error {
	return m.record("right")
}

func newTestController(cfg Config, mover Mover, start Vec2) *PredictiveMovementController {
	return NewPredictiveMovementController(cfg, mover, "p1", "s1", 1080, 1080, start)
}

func TestPredictedStaysInBounds(t *testing.T) {
	mover := &recordingMover{}
	c := newTestController(DefaultConfig(), mover, Vec2{X: 540, Y: 540})
	c.SetActive(true)

	targets := []Vec2{
		{X: 5000, Y: 540},
		{X: -5000, Y: 540},
		{X: 540, Y: 5000},
		{X: 540, Y: -5000},
		{X: 9999, Y: -9999},
	}

	for _, target := range targets {
		c.SetTarget(target)
		for i := 0; i < 600; i++ {
			c.Update(1.0 / 60.0)
			p := c.Predicted()
			require.GreaterOrEqual(t, p.X, 0.0)
			require.LessOrEqual(t, p.X, 1080.0)
			require.GreaterOrEqual(t, p.Y, 0.0)
			require.LessOrEqual(t, p.Y, 1080.0)
		}
	}
}

func TestCommandAxisQuantization(t *testing.T) {
	cases := []struct {
		name    string
		drift   Vec2
		command string
	}{
		{"east", Vec2{X: 10, Y: 0}, "right"},
		{"west", Vec2{X: -10, Y: 0}, "left"},
		{"north", Vec2{X: 0, Y: 10}, "up"},
		{"south", Vec2{X: 0, Y: -10}, "down"},
		{"mostly east", Vec2{X: 12, Y: -9}, "right"},
		{"mostly south", Vec2{X: 5, Y: -11}, "down"},
		{"tie prefers horizontal", Vec2{X: 10, Y: 10}, "right"},
		{"negative tie prefers horizontal", Vec2{X: -10, Y: 10}, "left"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// A frame cap of one full sync interval lets a single update
			// trigger exactly one drift evaluation.
			cfg := DefaultConfig()
			cfg.MaxFrameDelta = cfg.SyncInterval

			mover := &recordingMover{}
			start := Vec2{X: 540, Y: 540}
			c := newTestController(cfg, mover, start)

			// Pull confirmed away from predicted without touching predicted;
			// the gap stays under the snap threshold.
			c.ApplyAuthoritative(&PlayerState{PlayerID: "p1", Pos: start.Sub(tc.drift)})

			c.Update(cfg.SyncInterval)

			require.Len(t, mover.commands, 1)
			assert.Equal(t, tc.command, mover.commands[0])
		})
	}
}

func TestNoCommandUnderDriftThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFrameDelta = cfg.SyncInterval

	mover := &recordingMover{}
	start := Vec2{X: 540, Y: 540}
	c := newTestController(cfg, mover, start)

	c.ApplyAuthoritative(&PlayerState{PlayerID: "p1", Pos: start.Sub(Vec2{X: 5, Y: 0})})
	c.Update(cfg.SyncInterval)

	assert.Empty(t, mover.commands)
}

func TestCommandRateBound(t *testing.T) {
	frameRates := []int{30, 60, 144}

	for _, fps := range frameRates {
		mover := &recordingMover{}
		start := Vec2{X: 540, Y: 540}
		c := newTestController(DefaultConfig(), mover, start)

		// Large standing drift; commands do not change client state, so it
		// persists across the whole simulated second.
		c.ApplyAuthoritative(&PlayerState{PlayerID: "p1", Pos: Vec2{X: 0, Y: 0}})

		dt := 1.0 / float64(fps)
		for i := 0; i < fps; i++ {
			c.Update(dt)
		}

		assert.LessOrEqual(t, len(mover.commands), 10, "fps %d", fps)
		assert.GreaterOrEqual(t, len(mover.commands), 8, "fps %d", fps)
	}
}

func TestReconciliationSmoothing(t *testing.T) {
	mover := &recordingMover{}
	c := newTestController(DefaultConfig(), mover, Vec2{X: 500, Y: 500})

	// Divergence above the snap threshold halves per update.
	c.ApplyAuthoritative(&PlayerState{PlayerID: "p1", Pos: Vec2{X: 500, Y: 400}})
	assert.InDelta(t, 450, c.Predicted().Y, 1e-9)
	assert.InDelta(t, 50, c.Predicted().Sub(c.Confirmed()).Len(), 1e-9)

	// Divergence at or below the threshold leaves predicted untouched.
	c.ApplyAuthoritative(&PlayerState{PlayerID: "p1", Pos: Vec2{X: 500, Y: 440}})
	assert.InDelta(t, 450, c.Predicted().Y, 1e-9)
	assert.InDelta(t, 440, c.Confirmed().Y, 1e-9)
}

func TestAuthoritativeUpdateIgnoresOtherPlayers(t *testing.T) {
	mover := &recordingMover{}
	c := newTestController(DefaultConfig(), mover, Vec2{X: 500, Y: 500})

	c.ApplyAuthoritative(&PlayerState{PlayerID: "someone-else", Pos: Vec2{X: 0, Y: 0}})

	assert.Equal(t, Vec2{X: 500, Y: 500}, c.Confirmed())
}

func TestBoostMultipliesSpeed(t *testing.T) {
	cfg := DefaultConfig()
	mover := &recordingMover{}

	plain := newTestController(cfg, mover, Vec2{X: 100, Y: 100})
	plain.SetTarget(Vec2{X: 1000, Y: 100})
	plain.SetActive(true)
	plain.Update(0.01)
	assert.InDelta(t, 101, plain.Predicted().X, 1e-9)

	boosted := newTestController(cfg, mover, Vec2{X: 100, Y: 100})
	boosted.SetTarget(Vec2{X: 1000, Y: 100})
	boosted.SetActive(true)
	boosted.ActivateBoost()
	boosted.Update(0.01)
	assert.InDelta(t, 101.5, boosted.Predicted().X, 1e-9)
}

func TestBoostExpiresByAccumulatedTime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFrameDelta = 10.0

	mover := &recordingMover{}
	c := newTestController(cfg, mover, Vec2{X: 100, Y: 100})
	c.ActivateBoost()
	assert.True(t, c.BoostActive())

	c.Update(cfg.BoostDuration / 2)
	assert.True(t, c.BoostActive())

	c.Update(cfg.BoostDuration/2 + 0.01)
	assert.False(t, c.BoostActive())
}

func TestFailedCommandsAreReissued(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFrameDelta = cfg.SyncInterval

	mover := &recordingMover{err: errors.New("connection reset")}
	start := Vec2{X: 540, Y: 540}
	c := newTestController(cfg, mover, start)
	c.ApplyAuthoritative(&PlayerState{PlayerID: "p1", Pos: start.Sub(Vec2{X: 20, Y: 0})})

	// Each tick re-evaluates drift and re-sends; no retry bookkeeping.
	c.Update(cfg.SyncInterval)
	c.Update(cfg.SyncInterval)

	assert.Equal(t, []string{"right", "right"}, mover.commands)
}

func TestStopHaltsCommands(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFrameDelta = cfg.SyncInterval

	mover := &recordingMover{}
	start := Vec2{X: 540, Y: 540}
	c := newTestController(cfg, mover, start)
	c.ApplyAuthoritative(&PlayerState{PlayerID: "p1", Pos: start.Sub(Vec2{X: 20, Y: 0})})

	c.Stop()
	c.Update(cfg.SyncInterval)

	assert.Empty(t, mover.commands)
}

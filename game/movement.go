package game

import "sync"

// PredictiveMovementController advances a locally predicted position toward
// the pointer target every frame and reconciles it against the authoritative
// feed. The confirmed position can be written from a network callback while
// the frame loop reads it, so it sits behind a mutex.
type PredictiveMovementController struct {
	cfg   Config
	mover Mover

	playerID  string
	sessionID string
	mapW      float64
	mapH      float64

	mu        sync.Mutex
	predicted Vec2
	confirmed Vec2

	target Vec2
	active bool

	boost     SpeedBoost
	syncAccum float64
	stopped   bool
}

// NewPredictiveMovementController starts with predicted == confirmed == start,
// which the caller takes from the session's initial state replay.
func NewPredictiveMovementController(cfg Config, mover Mover, playerID, sessionID string, mapW, mapH float64, start Vec2) *PredictiveMovementController {
	return &PredictiveMovementController{
		cfg:       cfg,
		mover:     mover,
		playerID:  playerID,
		sessionID: sessionID,
		mapW:      mapW,
		mapH:      mapH,
		predicted: start,
		confirmed: start,
		target:    start,
	}
}

// SetTarget updates the pointer target, already converted to map coordinates.
func (c *PredictiveMovementController) SetTarget(t Vec2) {
	c.target = t
}

// SetActive toggles whether movement is requested this frame.
func (c *PredictiveMovementController) SetActive(active bool) {
	c.active = active
}

// ActivateBoost arms the speed power-up for the configured duration.
func (c *PredictiveMovementController) ActivateBoost() {
	c.boost.Activate(c.cfg.BoostDuration)
}

func (c *PredictiveMovementController) BoostActive() bool {
	return c.boost.Active()
}

// Stop halts command emission permanently. Called on game over.
func (c *PredictiveMovementController) Stop() {
	c.stopped = true
}

func (c *PredictiveMovementController) Predicted() Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.predicted
}

func (c *PredictiveMovementController) Confirmed() Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirmed
}

// Update runs one frame. dt is elapsed seconds since the previous frame and
// is clamped to cfg.MaxFrameDelta before use.
func (c *PredictiveMovementController) Update(dt float64) {
	if dt > c.cfg.MaxFrameDelta {
		dt = c.cfg.MaxFrameDelta
	}
	if dt < 0 {
		dt = 0
	}

	c.boost.Update(dt)

	if c.active {
		c.advancePredicted(dt)
	}

	c.syncAccum += dt
	for c.syncAccum >= c.cfg.SyncInterval {
		c.syncAccum -= c.cfg.SyncInterval
		c.evaluateDrift()
	}
}

func (c *PredictiveMovementController) advancePredicted(dt float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := c.target.Sub(c.predicted)
	if dir.Len() <= c.cfg.ArriveRadius {
		return
	}

	speed := c.cfg.BaseSpeed
	if c.boost.Active() {
		speed *= c.cfg.BoostFactor
	}

	c.predicted = c.predicted.Add(dir.Normalized().Scale(speed * dt)).ClampRect(c.mapW, c.mapH)
}

// evaluateDrift emits at most one axis-quantized move command when the
// predicted position has drifted past the threshold. The axis with the larger
// drift magnitude wins; ties go horizontal. Transmission failures are dropped,
// the next tick re-evaluates.
func (c *PredictiveMovementController) evaluateDrift() {
	if c.stopped {
		return
	}

	c.mu.Lock()
	drift := c.predicted.Sub(c.confirmed)
	c.mu.Unlock()

	if drift.Len() <= c.cfg.DriftThreshold {
		return
	}

	var err error
	if abs(drift.X) >= abs(drift.Y) {
		if drift.X > 0 {
			err = c.mover.MovePlayerRight(c.playerID, c.sessionID)
		} else {
			err = c.mover.MovePlayerLeft(c.playerID, c.sessionID)
		}
	} else {
		if drift.Y > 0 {
			err = c.mover.MovePlayerUp(c.playerID, c.sessionID)
		} else {
			err = c.mover.MovePlayerDown(c.playerID, c.sessionID)
		}
	}
	if err != nil {
		Log.Debugw("move command dropped", "player", c.playerID, "err", err)
	}
}

// ApplyAuthoritative records a confirmed position for the local player. When
// the predicted position has diverged past SnapThreshold it is pulled partway
// toward the confirmed one instead of snapping, which keeps corrections from
// visibly teleporting the player.
func (c *PredictiveMovementController) ApplyAuthoritative(state *PlayerState) {
	if state == nil || state.PlayerID != c.playerID {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.confirmed = state.Pos
	if c.predicted.Sub(c.confirmed).Len() > c.cfg.SnapThreshold {
		c.predicted = c.predicted.Lerp(c.confirmed, c.cfg.SnapLerp)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package game

// Config holds the movement tuning values. These are tunables, not physical
// constants; DefaultConfig mirrors the values the backend's 8-unit move
// quantum was balanced against.
type Config struct {
	// BaseSpeed is the predicted-position advance rate in map units per second.
	BaseSpeed float64
	// BoostFactor multiplies BaseSpeed while a speed power-up is active.
	BoostFactor float64
	// BoostDuration is how long one speed power-up lasts, in seconds.
	BoostDuration float64
	// SyncInterval is the fixed cadence, in seconds, at which drift is
	// evaluated and at most one move command is emitted.
	SyncInterval float64
	// DriftThreshold is the predicted-vs-confirmed distance above which a
	// move command is emitted. Matches the server's per-command step size.
	DriftThreshold float64
	// SnapThreshold is the distance above which an authoritative update pulls
	// the predicted position partway toward the confirmed one.
	SnapThreshold float64
	// SnapLerp is the interpolation factor applied when SnapThreshold is
	// exceeded.
	SnapLerp float64
	// MaxFrameDelta caps dt per update so a long frame cannot produce an
	// oversized step.
	MaxFrameDelta float64
	// ArriveRadius is the distance under which the predicted position stops
	// chasing the pointer target.
	ArriveRadius float64
	// TrailSegments and TrailSpacing shape remote players' follow-the-leader
	// trails.
	TrailSegments int
	TrailSpacing  float64
}

func DefaultConfig() Config {
	return Config{
		BaseSpeed:      100,
		BoostFactor:    1.5,
		BoostDuration:  4.5,
		SyncInterval:   0.1,
		DriftThreshold: 8,
		SnapThreshold:  32,
		SnapLerp:       0.5,
		MaxFrameDelta:  1.0 / 30.0,
		ArriveRadius:   1.0,
		TrailSegments:  6,
		TrailSpacing:   16,
	}
}

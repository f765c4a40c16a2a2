package game

// SpeedBoost is a countdown driven by the frame loop. No timer goroutine
// touches it, so only the loop that calls Update observes state changes.
type SpeedBoost struct {
	remaining float64
}

// Activate arms the boost; re-activating while active restarts the window.
func (b *SpeedBoost) Activate(duration float64) {
	if duration > 0 {
		b.remaining = duration
	}
}

func (b *SpeedBoost) Update(dt float64) {
	if b.remaining > 0 {
		b.remaining -= dt
		if b.remaining < 0 {
			b.remaining = 0
		}
	}
}

func (b *SpeedBoost) Active() bool {
	return b.remaining > 0
}

package proc

// DefaultRateCapPerSecond effectively leaves the global rate uncapped.
const DefaultRateCapPerSecond = 1000

// windowMs is the length of the rate limiting window.
const windowMs = 1000

// RateWindow tracks successful fires per rolling one-second window and
// enforces a global cap across all procs.
//
// The window accumulator wraps by a single subtraction per Roll call.
// A Roll spanning several seconds therefore leaves the remainder above
// 1000ms, and the per-second counter is reset only once. This quirk is
// kept deliberately; the windowed telemetry depends on it.
type RateWindow struct {
	capPerSecond int
	fires        int
	elapsedMs    int
}

// NewRateWindow creates a window with the given cap (coerced to at least 1).
func NewRateWindow(capPerSecond int) *RateWindow {
	w := &RateWindow{}
	w.SetCap(capPerSecond)
	return w
}

// SetCap sets the per-second ceiling. Values <= 0 are coerced to 1.
func (w *RateWindow) SetCap(capPerSecond int) {
	if capPerSecond <= 0 {
		capPerSecond = 1
	}
	w.capPerSecond = capPerSecond
}

// Cap returns the per-second ceiling.
func (w *RateWindow) Cap() int {
	return w.capPerSecond
}

// Allow reports whether another fire fits in the current window.
func (w *RateWindow) Allow() bool {
	return w.fires < w.capPerSecond
}

// Record counts a successful fire.
func (w *RateWindow) Record() {
	w.fires++
}

// Roll advances the window by dtMs.
// Returns true if the window wrapped and the fire counter was reset.
func (w *RateWindow) Roll(dtMs int) bool {
	w.elapsedMs += dtMs
	if w.elapsedMs >= windowMs {
		w.elapsedMs -= windowMs
		w.fires = 0
		return true
	}
	return false
}

// Fires returns the number of fires counted since the last wrap.
func (w *RateWindow) Fires() int {
	return w.fires
}

// ElapsedMs returns the window accumulator (the trailing partial second).
func (w *RateWindow) ElapsedMs() int {
	return w.elapsedMs
}

// Reset clears the accumulator and the fire counter. The cap is kept.
func (w *RateWindow) Reset() {
	w.fires = 0
	w.elapsedMs = 0
}

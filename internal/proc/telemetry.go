package proc

// Telemetry reads never fail. An id that was never issued reads as zero.

// TriggerCount returns how many times the proc has fired.
func (e *Engine) TriggerCount(id int) int {
	if !e.valid(id) {
		return 0
	}
	return e.slots[id].state.TriggerCount
}

// ActiveStacks returns the proc's current stack count.
func (e *Engine) ActiveStacks(id int) int {
	if !e.valid(id) {
		return 0
	}
	return e.slots[id].state.Stacks
}

// LastFireSequence returns the sequence number of the proc's most recent
// fire, or 0 if it never fired.
func (e *Engine) LastFireSequence(id int) int64 {
	if !e.valid(id) {
		return 0
	}
	return e.slots[id].state.LastFireSequence
}

// UptimeRatio returns ActiveTimeMs divided by the rate window accumulator.
//
// The window wraps every second, so the denominator is only the trailing
// partial second, not session time. Values above 1 are expected once a
// proc has been active for more than a second. Kept for compatibility with
// existing tuning data; use SessionUptimeRatio for a true ratio.
func (e *Engine) UptimeRatio(id int) float64 {
	if !e.valid(id) {
		return 0
	}
	window := e.window.ElapsedMs()
	if window <= 0 {
		return 0
	}
	return float64(e.slots[id].state.ActiveTimeMs) / float64(window)
}

// TriggersPerMinute returns TriggerCount normalized by the rate window
// accumulator. Same trailing-second caveat as UptimeRatio.
func (e *Engine) TriggersPerMinute(id int) float64 {
	if !e.valid(id) {
		return 0
	}
	window := e.window.ElapsedMs()
	if window <= 0 {
		return 0
	}
	minutes := float64(window) / 60000.0
	return float64(e.slots[id].state.TriggerCount) / minutes
}

// SessionUptimeRatio returns ActiveTimeMs divided by the cumulative time
// advanced since the last Reset.
func (e *Engine) SessionUptimeRatio(id int) float64 {
	if !e.valid(id) || e.elapsedMs <= 0 {
		return 0
	}
	return float64(e.slots[id].state.ActiveTimeMs) / float64(e.elapsedMs)
}

// SessionTriggersPerMinute returns TriggerCount normalized by the
// cumulative time advanced since the last Reset.
func (e *Engine) SessionTriggersPerMinute(id int) float64 {
	if !e.valid(id) || e.elapsedMs <= 0 {
		return 0
	}
	minutes := float64(e.elapsedMs) / 60000.0
	return float64(e.slots[id].state.TriggerCount) / minutes
}

// Snapshot is a point-in-time view of one proc, used by tooling.
type Snapshot struct {
	Definition Definition
	State      State

	UptimeRatio              float64
	TriggersPerMinute        float64
	SessionUptimeRatio       float64
	SessionTriggersPerMinute float64
}

// Snapshots returns a snapshot of every proc in id order.
func (e *Engine) Snapshots() []Snapshot {
	out := make([]Snapshot, len(e.slots))
	for i := range e.slots {
		out[i] = Snapshot{
			Definition:               e.slots[i].def,
			State:                    e.slots[i].state,
			UptimeRatio:              e.UptimeRatio(i),
			TriggersPerMinute:        e.TriggersPerMinute(i),
			SessionUptimeRatio:       e.SessionUptimeRatio(i),
			SessionTriggersPerMinute: e.SessionTriggersPerMinute(i),
		}
	}
	return out
}

package proc

// Advance moves every timer forward by dtMs.
//
// Per call, in order:
//  1. roll the rate window (one wrap at most)
//  2. accrue active time for procs with stacks and duration remaining
//  3. decay cooldowns, clamped at 0
//  4. decay durations; expiry clamps to 0 and clears all stacks
//
// hpCurrent and hpMax are accepted for future WhenLowHP evaluation and are
// currently unused. A non-positive dtMs is a no-op.
func (e *Engine) Advance(dtMs, hpCurrent, hpMax int) {
	_, _ = hpCurrent, hpMax
	if dtMs <= 0 {
		return
	}

	e.window.Roll(dtMs)
	e.elapsedMs += int64(dtMs)

	for i := range e.slots {
		st := &e.slots[i].state
		if st.Active() {
			st.ActiveTimeMs += dtMs
		}
	}

	for i := range e.slots {
		st := &e.slots[i].state

		if st.CooldownRemainingMs > 0 {
			st.CooldownRemainingMs = max(st.CooldownRemainingMs-dtMs, 0)
		}

		if st.DurationRemainingMs > 0 {
			st.DurationRemainingMs -= dtMs
			if st.DurationRemainingMs <= 0 {
				st.DurationRemainingMs = 0
				expired := st.Stacks
				st.Stacks = 0
				e.logger.Debug("proc expired",
					"id", i,
					"name", e.slots[i].def.Name,
					"stacks", expired,
				)
			}
		}
	}
}

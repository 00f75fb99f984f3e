package proc

// isShield reports whether the slot is an active block-triggered proc.
func isShield(s *slot) bool {
	return s.def.Trigger == OnBlock && s.state.Active()
}

// AbsorbPool returns the damage absorption available across all active
// shields: the sum of Magnitude * Stacks.
//
// Shields with a non-positive magnitude hold nothing and are not counted,
// so ConsumeAbsorb can never take more than AbsorbPool reports.
func (e *Engine) AbsorbPool() int {
	total := 0
	for i := range e.slots {
		s := &e.slots[i]
		if !isShield(s) || s.def.Magnitude <= 0 {
			continue
		}
		total += s.def.Magnitude * s.state.Stacks
	}
	return total
}

// ConsumeAbsorb drains up to amount from active shields in id order and
// returns the amount actually absorbed.
//
// Stacks are removed in whole units: taking any part of a stack's worth
// removes that stack (ceil(taken / magnitude)). A shield drained to zero
// stacks also loses its remaining duration.
func (e *Engine) ConsumeAbsorb(amount int) int {
	if amount <= 0 {
		return 0
	}

	remaining := amount
	for i := range e.slots {
		if remaining <= 0 {
			break
		}
		s := &e.slots[i]
		if !isShield(s) {
			continue
		}
		perStack := s.def.Magnitude
		available := perStack * s.state.Stacks
		if available <= 0 {
			continue
		}

		take := min(available, remaining)
		remaining -= take

		removed := (take + perStack - 1) / perStack
		s.state.Stacks = max(s.state.Stacks-removed, 0)
		if s.state.Stacks == 0 {
			s.state.DurationRemainingMs = 0
		}

		e.logger.Debug("shield absorbed",
			"id", i,
			"taken", take,
			"stacks_removed", removed,
			"stacks", s.state.Stacks,
		)
	}

	return amount - remaining
}

package proc

// Hit reports a landed hit. OnHit procs are attempted first; if crit is set,
// OnCrit procs are attempted afterwards within the same call.
func (e *Engine) Hit(crit bool) {
	e.dispatch(OnHit)
	if crit {
		e.dispatch(OnCrit)
	}
}

// Kill reports a kill.
func (e *Engine) Kill() {
	e.dispatch(OnKill)
}

// Block reports a block.
func (e *Engine) Block() {
	e.dispatch(OnBlock)
}

// Dodge reports a dodge.
func (e *Engine) Dodge() {
	e.dispatch(OnDodge)
}

// dispatch attempts to fire every proc bound to trig, in id order.
func (e *Engine) dispatch(trig Trigger) {
	for i := range e.slots {
		if e.slots[i].def.Trigger == trig {
			e.fire(i)
		}
	}
}

// fire runs the per-proc state machine. Rejections leave no trace.
func (e *Engine) fire(id int) {
	s := &e.slots[id]
	st := &s.state
	def := &s.def

	if st.CooldownRemainingMs > 0 {
		return
	}
	if !e.window.Allow() {
		return
	}

	st.CooldownRemainingMs = max(def.ICDMs, 0)
	st.TriggerCount++
	e.window.Record()
	st.LastFireSequence = e.clock.Next()

	if def.DurationMs > 0 {
		switch def.StackRule {
		case Stack:
			if def.MaxStacks <= 0 || st.Stacks < def.MaxStacks {
				st.Stacks++
			}
			// Duration is anchored to the first stack only.
			if st.DurationRemainingMs <= 0 {
				st.DurationRemainingMs = def.DurationMs
			}
		case Refresh:
			st.Stacks = max(st.Stacks, 1)
			st.DurationRemainingMs = def.DurationMs
		default:
			if st.Stacks == 0 {
				st.Stacks = 1
				st.DurationRemainingMs = def.DurationMs
			}
		}
	}

	rec := FireRecord{
		Seq:                 st.LastFireSequence,
		ProcID:              id,
		Name:                def.Name,
		Trigger:             def.Trigger,
		ElapsedMs:           e.elapsedMs,
		Stacks:              st.Stacks,
		DurationRemainingMs: st.DurationRemainingMs,
	}

	e.logger.Debug("proc fired",
		"id", id,
		"name", def.Name,
		"seq", rec.Seq,
		"stacks", st.Stacks,
		"duration_ms", st.DurationRemainingMs,
	)

	for _, obs := range e.observers {
		obs.ProcFired(rec)
	}
}

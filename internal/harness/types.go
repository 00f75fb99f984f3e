package harness

import "github.com/roach88/procforge/internal/proc"

// TraceEvent is one fire in the trace.
type TraceEvent struct {
	Seq       int64  `json:"seq"`
	Step      int    `json:"step"` // index into Result.Inputs
	ElapsedMs int64  `json:"elapsed_ms"`
	ProcID    int    `json:"proc_id"`
	Proc      string `json:"proc"`
	Trigger   string `json:"trigger"`
	Stacks    int    `json:"stacks"`
	Duration  int    `json:"duration_remaining_ms"` // after the fire
}

// ProcSummary is the final state of one proc.
type ProcSummary struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	TriggerCount        int    `json:"trigger_count"`
	Stacks              int    `json:"stacks"`
	DurationRemainingMs int    `json:"duration_remaining_ms"`
	LastFireSequence    int64  `json:"last_fire_sequence"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: no step errors, no failed assertions.
	Pass bool `json:"pass"`

	// Trace contains every fire in sequence order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step and assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Skipped lists definitions that were not registered.
	Skipped []string `json:"skipped,omitempty"`

	// Inputs is the flattened input stream the steps produced.
	Inputs []proc.Input `json:"-"`

	// Final holds the end state of every registered proc, by id.
	Final []ProcSummary `json:"final"`

	// AbsorbPool is the shield absorption available at the end.
	AbsorbPool int `json:"absorb_pool"`

	// ElapsedMs is the simulated session time.
	ElapsedMs int64 `json:"elapsed_ms"`

	// SessionID is set when the run was journaled.
	SessionID string `json:"session_id,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds an error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddFire appends a fire to the trace.
func (r *Result) AddFire(step int, rec proc.FireRecord) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:       rec.Seq,
		Step:      step,
		ElapsedMs: rec.ElapsedMs,
		ProcID:    rec.ProcID,
		Proc:      rec.Name,
		Trigger:   rec.Trigger.String(),
		Stacks:    rec.Stacks,
		Duration:  rec.DurationRemainingMs,
	})
}

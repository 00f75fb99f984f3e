package journal

import (
	"context"
	"fmt"

	"github.com/roach88/procforge/internal/proc"
)

// Divergence is the first point where a replay disagreed with the journal.
type Divergence struct {
	// Index is the position in the fire log.
	Index int

	// Expected and Actual are nil when one log ended early.
	Expected *Fire
	Actual   *Fire
}

// String renders the divergence for reports.
func (d Divergence) String() string {
	switch {
	case d.Expected == nil:
		return fmt.Sprintf("fire %d: unexpected extra fire seq=%d proc=%d at step %d",
			d.Index, d.Actual.Record.Seq, d.Actual.Record.ProcID, d.Actual.Step)
	case d.Actual == nil:
		return fmt.Sprintf("fire %d: missing fire seq=%d proc=%d at step %d",
			d.Index, d.Expected.Record.Seq, d.Expected.Record.ProcID, d.Expected.Step)
	default:
		return fmt.Sprintf("fire %d: expected %+v at step %d, got %+v at step %d",
			d.Index, d.Expected.Record, d.Expected.Step, d.Actual.Record, d.Actual.Step)
	}
}

// ReplayResult reports a replay.
type ReplayResult struct {
	Session Session
	Inputs  int
	Fires   []Fire

	// Divergence is nil when the replay matched the journal exactly.
	Divergence *Divergence

	// Engine is the replayed engine in its final state, for telemetry.
	Engine *proc.Engine
}

// Matched reports whether the replay reproduced the journal.
func (r *ReplayResult) Matched() bool {
	return r.Divergence == nil
}

// fireCollector records replayed fires with the step that produced them.
type fireCollector struct {
	step  int
	fires []Fire
}

func (c *fireCollector) ProcFired(rec proc.FireRecord) {
	c.fires = append(c.fires, Fire{Step: c.step, Record: rec})
}

// Replay rebuilds the session's engine from the journal, re-applies every
// input and compares the resulting fire log with the journaled one.
//
// opts are applied before the session's own capacity and rate cap; use
// them for logging.
func Replay(ctx context.Context, st *Store, sessionID string, opts ...proc.Option) (*ReplayResult, error) {
	sess, err := st.ReadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	inputs, err := st.ReadInputs(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", sessionID, err)
	}
	expected, err := st.ReadFires(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", sessionID, err)
	}

	collector := &fireCollector{}
	all := append([]proc.Option{}, opts...)
	all = append(all,
		proc.WithCapacity(sess.Capacity),
		proc.WithRateCap(sess.RateCap),
		proc.WithObserver(collector),
	)
	eng := proc.New(all...)

	for i, def := range sess.Definitions {
		if _, err := eng.Register(def); err != nil {
			return nil, fmt.Errorf("replay %s: definition %d: %w", sessionID, i, err)
		}
	}

	for step, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		collector.step = step
		// Input errors were journaled as inputs; reproducing them is correct.
		_, _ = eng.Apply(in)
	}

	return &ReplayResult{
		Session:    sess,
		Inputs:     len(inputs),
		Fires:      collector.fires,
		Divergence: compareFires(expected, collector.fires),
		Engine:     eng,
	}, nil
}

// compareFires returns the first difference between two fire logs.
func compareFires(expected, actual []Fire) *Divergence {
	n := max(len(expected), len(actual))
	for i := 0; i < n; i++ {
		switch {
		case i >= len(expected):
			return &Divergence{Index: i, Actual: &actual[i]}
		case i >= len(actual):
			return &Divergence{Index: i, Expected: &expected[i]}
		case expected[i] != actual[i]:
			return &Divergence{Index: i, Expected: &expected[i], Actual: &actual[i]}
		}
	}
	return nil
}

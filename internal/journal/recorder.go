package journal

import (
	"context"
	"fmt"

	"github.com/roach88/procforge/internal/proc"
)

// Recorder journals every input applied to an engine together with the
// fires it produced.
//
// The Recorder registers itself as a FireObserver. Fires are buffered
// during an Apply call and written with its input in one transaction.
// While recording, drive the engine only through Apply.
//
// Thread-safety: like the Engine, a Recorder is single-threaded.
type Recorder struct {
	st        *Store
	eng       *proc.Engine
	sessionID string
	step      int
	pending   []proc.FireRecord
}

// NewRecorder opens a new session for eng's current definitions and
// settings. Definitions registered after this call are not journaled.
func NewRecorder(ctx context.Context, st *Store, eng *proc.Engine, gen IDGenerator, label string) (*Recorder, error) {
	sess := Session{
		ID:          gen.Generate(),
		Label:       label,
		Capacity:    eng.Capacity(),
		RateCap:     eng.RateCapPerSecond(),
		Definitions: eng.Definitions(),
	}
	if err := st.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	r := &Recorder{st: st, eng: eng, sessionID: sess.ID}
	eng.Observe(r)
	return r, nil
}

// SessionID returns the id of the session being recorded.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Steps returns the number of inputs recorded so far.
func (r *Recorder) Steps() int {
	return r.step
}

// ProcFired implements proc.FireObserver.
func (r *Recorder) ProcFired(rec proc.FireRecord) {
	r.pending = append(r.pending, rec)
}

// Apply applies in to the engine and journals it.
//
// Engine errors (bad proc id, unknown kind) are journaled like any other
// input and returned; replay reproduces them. A journal write failure is
// returned wrapped and leaves the engine ahead of the journal.
func (r *Recorder) Apply(ctx context.Context, in proc.Input) (int, error) {
	r.pending = r.pending[:0]
	n, applyErr := r.eng.Apply(in)

	step := r.step
	if err := r.st.AppendStep(ctx, r.sessionID, step, in, r.pending); err != nil {
		return n, fmt.Errorf("journal: %w", err)
	}
	r.step++
	return n, applyErr
}

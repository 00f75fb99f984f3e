package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/procforge/internal/journal"
	"github.com/roach88/procforge/internal/proc"
	"github.com/roach88/procforge/internal/procdef"
	"github.com/roach88/procforge/internal/testutil"
)

// Options configures a scenario run.
type Options struct {
	// Logger receives engine logs. Nil discards them.
	Logger *slog.Logger

	// Journal, when set, records the run as a session.
	Journal *journal.Store

	// IDs generates the journal session id. Nil means the scenario's
	// SessionID if set, otherwise UUIDv7.
	IDs journal.IDGenerator
}

// harness holds the state of one scenario execution.
type harness struct {
	eng    *proc.Engine
	names  map[string]int
	result *Result
	step   int
}

// Run executes a scenario with a fresh engine and returns the result.
//
// Execution flow:
// 1. Load and validate definitions (file first, then inline)
// 2. Register them into a new engine; rejected records are listed in Skipped
// 3. Flatten steps into an input stream and apply it
// 4. Evaluate assertions against the trace and final state
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(context.Background(), scenario, Options{})
}

// RunWithOptions is Run with logging and journaling control.
//
// The returned error covers setup failures (unreadable definitions,
// unknown proc names, journal writes). Engine errors during steps and
// failed assertions are reported in Result.Errors.
func RunWithOptions(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	engOpts := []proc.Option{proc.WithLogger(logger)}
	if scenario.Capacity > 0 {
		engOpts = append(engOpts, proc.WithCapacity(scenario.Capacity))
	}
	if scenario.RateCap > 0 {
		engOpts = append(engOpts, proc.WithRateCap(scenario.RateCap))
	}

	h := &harness{
		eng:    proc.New(engOpts...),
		names:  make(map[string]int),
		result: NewResult(),
	}
	h.eng.Observe(proc.FireObserverFunc(func(rec proc.FireRecord) {
		h.result.AddFire(h.step, rec)
	}))

	if err := h.loadDefinitions(scenario); err != nil {
		return nil, err
	}

	inputs, err := h.expand(scenario.Steps, nil)
	if err != nil {
		return nil, err
	}
	h.result.Inputs = inputs

	apply := h.eng.Apply
	if opts.Journal != nil {
		gen := opts.IDs
		if gen == nil {
			if scenario.SessionID != "" {
				gen = testutil.NewFixedSessionGenerator(scenario.SessionID)
			} else {
				gen = journal.UUIDv7Generator{}
			}
		}
		rec, err := journal.NewRecorder(ctx, opts.Journal, h.eng, gen, scenario.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to start journal session: %w", err)
		}
		h.result.SessionID = rec.SessionID()
		apply = func(in proc.Input) (int, error) {
			return rec.Apply(ctx, in)
		}
	}

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h.step = i
		if _, err := apply(in); err != nil {
			var re *proc.RuntimeError
			if !errors.As(err, &re) {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			h.result.AddError(fmt.Sprintf("step %d (%s): %v", i, in, err))
		}
	}

	h.collectFinal()

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}

	logger.Info("scenario completed",
		"scenario", scenario.Name,
		"inputs", len(inputs),
		"fires", len(h.result.Trace),
		"pass", h.result.Pass,
	)

	return h.result, nil
}

// loadDefinitions registers the definitions file, then inline records.
// Names are indexed for steps and assertions; the first proc with a
// given name wins.
func (h *harness) loadDefinitions(s *Scenario) error {
	var sources []*procdef.Result
	if s.DefinitionsFile != "" {
		res, err := procdef.ParseFile(s.DefinitionsFile)
		if err != nil {
			return fmt.Errorf("failed to load definitions: %w", err)
		}
		sources = append(sources, res)
	}
	if len(s.Definitions) > 0 {
		sources = append(sources, procdef.FromRecords(s.Name, s.Definitions))
	}

	for _, res := range sources {
		rep := procdef.Register(h.eng, res)
		for _, rej := range rep.Skipped {
			h.result.Skipped = append(h.result.Skipped, fmt.Sprintf("%s: %v", rep.Source, rej))
		}
		for _, id := range rep.Added {
			def, _ := h.eng.Definition(id)
			if def.Name == "" {
				continue
			}
			if _, dup := h.names[def.Name]; !dup {
				h.names[def.Name] = id
			}
		}
	}
	return nil
}

// expand flattens steps into engine inputs, unrolling repeats.
func (h *harness) expand(steps []Step, out []proc.Input) ([]proc.Input, error) {
	for _, st := range steps {
		n := st.Repeat
		if n == 0 {
			n = 1
		}
		for r := 0; r < n; r++ {
			if len(st.Do) > 0 {
				var err error
				out, err = h.expand(st.Do, out)
				if err != nil {
					return nil, err
				}
				continue
			}
			in, err := h.stepInput(st)
			if err != nil {
				return nil, err
			}
			out = append(out, in)
		}
	}
	return out, nil
}

// stepInput converts one validated step to an engine input.
func (h *harness) stepInput(st Step) (proc.Input, error) {
	in := proc.Input{Kind: stepKinds[st.Action]}
	switch in.Kind {
	case proc.InputAdvance:
		in.DtMs, in.HP, in.HPMax = st.Ms, st.HP, st.HPMax
	case proc.InputForce:
		id, ok := h.names[st.Proc]
		if !ok {
			return proc.Input{}, fmt.Errorf("force: unknown proc %q", st.Proc)
		}
		in.ProcID, in.Stacks, in.DurationMs = id, st.Stacks, st.DurationMs
	case proc.InputConsume, proc.InputRateCap:
		in.Amount = st.Amount
	}
	return in, nil
}

// collectFinal snapshots every registered proc into the result.
func (h *harness) collectFinal() {
	defs := h.eng.Definitions()
	h.result.Final = make([]ProcSummary, len(defs))
	for id, def := range defs {
		st, _ := h.eng.State(id)
		h.result.Final[id] = ProcSummary{
			ID:                  id,
			Name:                def.Name,
			TriggerCount:        st.TriggerCount,
			Stacks:              st.Stacks,
			DurationRemainingMs: st.DurationRemainingMs,
			LastFireSequence:    st.LastFireSequence,
		}
	}
	h.result.AbsorbPool = h.eng.AbsorbPool()
	h.result.ElapsedMs = h.eng.ElapsedMs()
}

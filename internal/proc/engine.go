package proc

import (
	"log/slog"
)

// DefaultCapacity is the default number of definition slots.
const DefaultCapacity = 64

// FireRecord describes one successful fire.
type FireRecord struct {
	Seq     int64
	ProcID  int
	Name    string
	Trigger Trigger

	// ElapsedMs is the cumulative session time at which the fire happened.
	ElapsedMs int64

	// Stacks and DurationRemainingMs are the proc's state after the fire.
	Stacks              int
	DurationRemainingMs int
}

// FireObserver receives every successful fire, in sequence order.
// Observers run synchronously inside the dispatch call and must not call
// back into the engine.
type FireObserver interface {
	ProcFired(rec FireRecord)
}

// FireObserverFunc adapts a function to FireObserver.
type FireObserverFunc func(rec FireRecord)

// ProcFired implements FireObserver.
func (f FireObserverFunc) ProcFired(rec FireRecord) {
	f(rec)
}

// slot pairs a definition with its runtime state.
type slot struct {
	def   Definition
	state State
}

// Engine is the proc registry and its timed state machines.
//
// INVARIANTS:
//   - ids are dense, 0-based and never change once issued
//   - slots are visited in id order for every dispatch (deterministic tie-break)
//   - CooldownRemainingMs and DurationRemainingMs are never negative
//
// Engine is not safe for concurrent use. See the package documentation.
type Engine struct {
	capacity  int
	slots     []slot
	window    *RateWindow
	clock     *Clock
	elapsedMs int64 // cumulative session time, never wraps

	observers []FireObserver
	logger    *slog.Logger
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithCapacity sets the number of definition slots.
//
// Default: 64 (DefaultCapacity). Values <= 0 keep the default.
func WithCapacity(capacity int) Option {
	return func(e *Engine) {
		if capacity > 0 {
			e.capacity = capacity
		}
	}
}

// WithRateCap sets the global per-second fire cap (see SetRateCapPerSecond).
func WithRateCap(capPerSecond int) Option {
	return func(e *Engine) {
		e.window.SetCap(capPerSecond)
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver registers a fire observer.
func WithObserver(obs FireObserver) Option {
	return func(e *Engine) {
		if obs != nil {
			e.observers = append(e.observers, obs)
		}
	}
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		capacity: DefaultCapacity,
		window:   NewRateWindow(DefaultRateCapPerSecond),
		clock:    NewClock(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.slots = make([]slot, 0, e.capacity)
	return e
}

// Observe registers an additional fire observer.
func (e *Engine) Observe(obs FireObserver) {
	if obs != nil {
		e.observers = append(e.observers, obs)
	}
}

// Register copies def into the next free slot with zeroed runtime state and
// returns its id. The definition is not validated; see procdef.Validate.
//
// Returns a CAPACITY_EXCEEDED RuntimeError when every slot is taken, in
// which case the registry is left untouched.
func (e *Engine) Register(def Definition) (int, error) {
	if len(e.slots) >= e.capacity {
		e.logger.Warn("proc registration rejected",
			"name", def.Name,
			"capacity", e.capacity,
		)
		return -1, NewCapacityError(e.capacity)
	}

	def.ID = len(e.slots)
	e.slots = append(e.slots, slot{def: def})

	e.logger.Debug("proc registered",
		"id", def.ID,
		"name", def.Name,
		"trigger", def.Trigger.String(),
		"stack_rule", def.StackRule.String(),
	)
	return def.ID, nil
}

// Reset clears every definition and runtime state and rewinds the rate
// window, session time and sequence clock. The rate cap and observers are kept.
func (e *Engine) Reset() {
	e.slots = e.slots[:0]
	e.window.Reset()
	e.clock.Reset()
	e.elapsedMs = 0
}

// Capacity returns the number of definition slots.
func (e *Engine) Capacity() int {
	return e.capacity
}

// Count returns the number of registered definitions.
func (e *Engine) Count() int {
	return len(e.slots)
}

// Definition returns a copy of the definition with the given id.
func (e *Engine) Definition(id int) (Definition, bool) {
	if !e.valid(id) {
		return Definition{}, false
	}
	return e.slots[id].def, true
}

// Definitions returns copies of all definitions in id order.
func (e *Engine) Definitions() []Definition {
	defs := make([]Definition, len(e.slots))
	for i := range e.slots {
		defs[i] = e.slots[i].def
	}
	return defs
}

// State returns a copy of the runtime state of the given proc.
func (e *Engine) State(id int) (State, bool) {
	if !e.valid(id) {
		return State{}, false
	}
	return e.slots[id].state, true
}

// SetRateCapPerSecond sets the global per-second fire cap.
// n <= 0 is coerced to 1.
func (e *Engine) SetRateCapPerSecond(n int) {
	e.window.SetCap(n)
}

// RateCapPerSecond returns the global per-second fire cap.
func (e *Engine) RateCapPerSecond() int {
	return e.window.Cap()
}

// FiresThisSecond returns the fires counted in the current rate window.
func (e *Engine) FiresThisSecond() int {
	return e.window.Fires()
}

// WindowElapsedMs returns the trailing partial-second window accumulator.
func (e *Engine) WindowElapsedMs() int {
	return e.window.ElapsedMs()
}

// ElapsedMs returns the cumulative session time advanced since the last Reset.
func (e *Engine) ElapsedMs() int64 {
	return e.elapsedMs
}

// Sequence returns the last issued fire sequence number.
func (e *Engine) Sequence() int64 {
	return e.clock.Current()
}

// ForceActivate sets stacks and remaining duration directly, bypassing
// cooldown, rate limiting and event matching. Both values are clamped at 0.
//
// Used by deterministic tests and by hosts that evaluate WhenLowHP
// thresholds themselves.
func (e *Engine) ForceActivate(id, stacks, durationMs int) error {
	if !e.valid(id) {
		return NewInvalidIDError(id, len(e.slots))
	}
	st := &e.slots[id].state
	st.Stacks = max(stacks, 0)
	st.DurationRemainingMs = max(durationMs, 0)
	return nil
}

func (e *Engine) valid(id int) bool {
	return id >= 0 && id < len(e.slots)
}

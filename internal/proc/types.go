package proc

import "fmt"

// Trigger identifies the gameplay event a proc reacts to.
type Trigger int

const (
	OnHit Trigger = iota
	OnCrit
	OnKill
	OnBlock
	OnDodge
	// WhenLowHP is never dispatched by an event. Callers evaluate their own
	// health threshold and use ForceActivate.
	WhenLowHP

	triggerCount
)

var triggerNames = [...]string{
	OnHit:     "ON_HIT",
	OnCrit:    "ON_CRIT",
	OnKill:    "ON_KILL",
	OnBlock:   "ON_BLOCK",
	OnDodge:   "ON_DODGE",
	WhenLowHP: "WHEN_LOW_HP",
}

// String returns the symbolic name used in definition files.
func (t Trigger) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TRIGGER(%d)", int(t))
	}
	return triggerNames[t]
}

// Valid reports whether t is a known trigger kind.
func (t Trigger) Valid() bool {
	return t >= 0 && t < triggerCount
}

// ParseTrigger converts a symbolic name (e.g. "ON_BLOCK") to a Trigger.
func ParseTrigger(s string) (Trigger, error) {
	for i, name := range triggerNames {
		if name == s {
			return Trigger(i), nil
		}
	}
	return 0, fmt.Errorf("unknown trigger %q", s)
}

// TriggerNames lists every symbolic trigger name in enum order.
func TriggerNames() []string {
	out := make([]string, len(triggerNames))
	copy(out, triggerNames[:])
	return out
}

// StackRule governs how repeated fires affect stacks and duration.
type StackRule int

const (
	// Refresh keeps at most one stack and restarts the duration on every fire.
	Refresh StackRule = iota
	// Stack adds a stack per fire up to MaxStacks. The duration is anchored
	// to the first stack and is not extended by later ones.
	Stack
	// Ignore activates once; fires while active only do bookkeeping.
	Ignore

	stackRuleCount
)

var stackRuleNames = [...]string{
	Refresh: "REFRESH",
	Stack:   "STACK",
	Ignore:  "IGNORE",
}

// String returns the symbolic name used in definition files.
func (r StackRule) String() string {
	if !r.Valid() {
		return fmt.Sprintf("STACK_RULE(%d)", int(r))
	}
	return stackRuleNames[r]
}

// Valid reports whether r is a known stack rule.
func (r StackRule) Valid() bool {
	return r >= 0 && r < stackRuleCount
}

// ParseStackRule converts a symbolic name (e.g. "STACK") to a StackRule.
func ParseStackRule(s string) (StackRule, error) {
	for i, name := range stackRuleNames {
		if name == s {
			return StackRule(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stack rule %q", s)
}

// StackRuleNames lists every symbolic stack rule name in enum order.
func StackRuleNames() []string {
	out := make([]string, len(stackRuleNames))
	copy(out, stackRuleNames[:])
	return out
}

// Definition holds the static parameters of a proc.
// The engine copies definitions on registration and never retains the caller's value.
type Definition struct {
	// ID is assigned by Register. Any value set by the caller is overwritten.
	ID int

	// Name is an optional authoring/display label.
	Name string

	Trigger Trigger

	// ICDMs is the internal cooldown between fires, in milliseconds.
	ICDMs int

	// DurationMs is the buff duration. Zero means an instantaneous effect
	// that never holds stacks.
	DurationMs int

	// Magnitude is opaque to the engine except for shield absorption,
	// where it is the absorb amount per stack.
	Magnitude int

	// MaxStacks caps the Stack rule. Zero means unlimited.
	MaxStacks int

	StackRule StackRule

	// Param is opaque (e.g. a low health threshold percentage).
	Param int
}

// State is the mutable runtime state of one registered proc.
type State struct {
	CooldownRemainingMs int
	DurationRemainingMs int
	Stacks              int
	TriggerCount        int

	// ActiveTimeMs accrues once per Advance while Stacks > 0 and
	// DurationRemainingMs > 0.
	ActiveTimeMs int

	// LastFireSequence is the global sequence of the most recent fire, 0 if never fired.
	LastFireSequence int64
}

// Active reports whether the proc currently holds stacks with time remaining.
func (s State) Active() bool {
	return s.Stacks > 0 && s.DurationRemainingMs > 0
}

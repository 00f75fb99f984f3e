package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %dms %s (%s) stacks=%d\n", ev.Seq, ev.ElapsedMs, ev.Proc, ev.Trigger, ev.Stacks)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
// An empty slice means all assertions passed.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	errs := []string{}
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertTriggerCount, AssertActiveStacks, AssertDurationRemaining, AssertLastSequence:
		sum, ok := findProc(result.Final, a.Proc)
		if !ok {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("registered proc %q", a.Proc),
				Actual:   "not registered",
			}
		}
		var v int64
		switch a.Type {
		case AssertTriggerCount:
			v = int64(sum.TriggerCount)
		case AssertActiveStacks:
			v = int64(sum.Stacks)
		case AssertDurationRemaining:
			v = int64(sum.DurationRemainingMs)
		case AssertLastSequence:
			v = sum.LastFireSequence
		}
		return checkBounds(a, fmt.Sprintf("%s of %s", a.Type, a.Proc), v, result.Trace)

	case AssertAbsorbPool:
		return checkBounds(a, a.Type, int64(result.AbsorbPool), nil)

	case AssertTotalFires:
		return checkBounds(a, a.Type, int64(len(result.Trace)), result.Trace)

	case AssertFireOrder:
		return assertFireOrder(result.Trace, a)

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// findProc returns the first proc with the given name.
func findProc(final []ProcSummary, name string) (ProcSummary, bool) {
	for _, sum := range final {
		if sum.Name == name {
			return sum, true
		}
	}
	return ProcSummary{}, false
}

// checkBounds compares v against Equals, Min and Max.
func checkBounds(a Assertion, what string, v int64, trace []TraceEvent) error {
	fail := func(expected string) error {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s %s", what, expected),
			Actual:   fmt.Sprintf("%d", v),
			Trace:    trace,
		}
	}
	if a.Equals != nil && v != int64(*a.Equals) {
		return fail(fmt.Sprintf("== %d", *a.Equals))
	}
	if a.Min != nil && v < int64(*a.Min) {
		return fail(fmt.Sprintf(">= %d", *a.Min))
	}
	if a.Max != nil && v > int64(*a.Max) {
		return fail(fmt.Sprintf("<= %d", *a.Max))
	}
	return nil
}

// assertFireOrder checks that the named procs fire in the given order.
// Fires don't need to be adjacent (intervening fires are allowed), and
// the same name may appear more than once.
func assertFireOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		if next < len(a.Procs) && ev.Proc == a.Procs[next] {
			next++
		}
	}
	if next == len(a.Procs) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFireOrder,
		Expected: fmt.Sprintf("fires in order: %v", a.Procs),
		Actual:   fmt.Sprintf("matched %d of %d, missing %s", next, len(a.Procs), a.Procs[next]),
		Trace:    trace,
	}
}

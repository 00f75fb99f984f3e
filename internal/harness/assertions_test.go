package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	r := NewResult()
	r.Trace = []TraceEvent{
		{Seq: 1, Proc: "Flurry", Trigger: "ON_HIT", Stacks: 1},
		{Seq: 2, Proc: "Execute", Trigger: "ON_CRIT"},
		{Seq: 3, Proc: "Flurry", Trigger: "ON_HIT", Stacks: 1},
		{Seq: 4, Proc: "Momentum", Trigger: "ON_KILL", Stacks: 1},
	}
	r.Final = []ProcSummary{
		{ID: 0, Name: "Flurry", TriggerCount: 2, Stacks: 1, DurationRemainingMs: 240, LastFireSequence: 3},
		{ID: 1, Name: "Execute", TriggerCount: 1, LastFireSequence: 2},
		{ID: 2, Name: "Momentum", TriggerCount: 1, Stacks: 1, DurationRemainingMs: 1000, LastFireSequence: 4},
	}
	r.AbsorbPool = 0
	return r
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertTriggerCount, Proc: "Flurry", Equals: intp(2)},
		{Type: AssertActiveStacks, Proc: "Momentum", Min: intp(1), Max: intp(1)},
		{Type: AssertDurationRemaining, Proc: "Flurry", Max: intp(300)},
		{Type: AssertLastSequence, Proc: "Execute", Equals: intp(2)},
		{Type: AssertAbsorbPool, Equals: intp(0)},
		{Type: AssertTotalFires, Min: intp(4)},
		{Type: AssertFireOrder, Procs: []string{"Flurry", "Execute", "Flurry", "Momentum"}},
		{Type: AssertFireOrder, Procs: []string{"Execute", "Momentum"}},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Bounds(t *testing.T) {
	tests := []struct {
		name string
		a    Assertion
		want string
	}{
		{"equals", Assertion{Type: AssertTriggerCount, Proc: "Flurry", Equals: intp(3)}, "== 3"},
		{"min", Assertion{Type: AssertTotalFires, Min: intp(5)}, ">= 5"},
		{"max", Assertion{Type: AssertDurationRemaining, Proc: "Momentum", Max: intp(999)}, "<= 999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.a})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestEvaluateAssertions_FireOrderOutOfOrder(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertFireOrder, Procs: []string{"Momentum", "Execute"}},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "matched 1 of 2, missing Execute")
	assert.Contains(t, errs[0], "Full trace:")
}

func TestEvaluateAssertions_FireOrderRepeatsMustAllMatch(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertFireOrder, Procs: []string{"Flurry", "Flurry", "Flurry"}},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "matched 2 of 3")
}

func TestEvaluateAssertions_UnknownProc(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertActiveStacks, Proc: "Nobody", Equals: intp(0)},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "not registered")
}

func TestAssertionError_Error(t *testing.T) {
	err := &AssertionError{
		Type:     AssertTotalFires,
		Expected: "total_fires == 1",
		Actual:   "2",
		Trace:    []TraceEvent{{Seq: 1, ElapsedMs: 40, Proc: "Flurry", Trigger: "ON_HIT", Stacks: 1}},
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: total_fires")
	assert.Contains(t, msg, "Expected: total_fires == 1")
	assert.Contains(t, msg, "Actual: 2")
	assert.Contains(t, msg, "[1] 40ms Flurry (ON_HIT) stacks=1")
}

package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/procforge/internal/canonical"
)

// TraceSnapshot captures the trace and final state of a scenario run.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for
// canonical JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Result.Trace))
	for i, ev := range s.Result.Trace {
		trace[i] = map[string]any{
			"seq":                   ev.Seq,
			"step":                  ev.Step,
			"elapsed_ms":            ev.ElapsedMs,
			"proc_id":               ev.ProcID,
			"proc":                  ev.Proc,
			"trigger":               ev.Trigger,
			"stacks":                ev.Stacks,
			"duration_remaining_ms": ev.Duration,
		}
	}

	final := make([]any, len(s.Result.Final))
	for i, sum := range s.Result.Final {
		final[i] = map[string]any{
			"id":                    sum.ID,
			"name":                  sum.Name,
			"trigger_count":         sum.TriggerCount,
			"stacks":                sum.Stacks,
			"duration_remaining_ms": sum.DurationRemainingMs,
			"last_fire_sequence":    sum.LastFireSequence,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
		"final":         final,
		"absorb_pool":   s.Result.AbsorbPool,
		"elapsed_ms":    s.Result.ElapsedMs,
	}
}

// MarshalSnapshot renders a result as canonical JSON.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{ScenarioName: scenarioName, Result: result}
	return canonical.Marshal(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}

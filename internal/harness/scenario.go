package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/procforge/internal/proc"
	"github.com/roach88/procforge/internal/procdef"
)

// Scenario defines a proc test scenario.
// A scenario loads definitions, drives the engine through a list of steps
// and asserts on the resulting fire trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Capacity and RateCap configure the engine. Zero means the default.
	Capacity int `yaml:"capacity,omitempty"`
	RateCap  int `yaml:"rate_cap,omitempty"`

	// DefinitionsFile is a definition file in any supported format.
	// Relative paths are resolved against the scenario file location.
	DefinitionsFile string `yaml:"definitions_file,omitempty"`

	// Definitions are inline records, registered after DefinitionsFile.
	Definitions procdef.File `yaml:"definitions,omitempty"`

	// Steps drive the engine in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`

	// SessionID is an optional fixed journal session id for deterministic runs.
	// If empty and the run is journaled, a UUIDv7 is generated.
	SessionID string `yaml:"session_id,omitempty"`
}

// Step is one engine call, or a repeated block of steps.
//
// Examples:
//
//	- action: hit
//	- action: advance
//	  ms: 20
//	- repeat: 50
//	  do:
//	    - action: hit
//	    - action: advance
//	      ms: 20
type Step struct {
	// Action is the input kind: advance, hit, crit, kill, block, dodge,
	// force, consume or rate_cap. Empty when Do is set.
	Action string `yaml:"action,omitempty"`

	// Ms, HP and HPMax are read by advance.
	Ms    int `yaml:"ms,omitempty"`
	HP    int `yaml:"hp,omitempty"`
	HPMax int `yaml:"hp_max,omitempty"`

	// Proc names the target of force.
	Proc       string `yaml:"proc,omitempty"`
	Stacks     int    `yaml:"stacks,omitempty"`
	DurationMs int    `yaml:"duration_ms,omitempty"`

	// Amount is read by consume and rate_cap.
	Amount int `yaml:"amount,omitempty"`

	// Repeat runs the step (or the Do block) this many times. Zero means once.
	Repeat int `yaml:"repeat,omitempty"`

	// Do is a block of steps run Repeat times.
	Do []Step `yaml:"do,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trigger_count": fires of Proc
	// - "active_stacks": stacks of Proc at the end
	// - "duration_remaining": remaining duration of Proc at the end
	// - "last_sequence": sequence number of Proc's last fire
	// - "absorb_pool": shield absorption available at the end
	// - "total_fires": length of the trace
	// - "fire_order": Procs fire in this order (not necessarily adjacent)
	Type string `yaml:"type"`

	// Proc is the definition name (used by per-proc assertions).
	Proc string `yaml:"proc,omitempty"`

	// Equals, Min and Max bound the value of numeric assertions.
	// At least one is required.
	Equals *int `yaml:"equals,omitempty"`
	Min    *int `yaml:"min,omitempty"`
	Max    *int `yaml:"max,omitempty"`

	// Procs is the expected fire order (used by fire_order).
	Procs []string `yaml:"procs,omitempty"`
}

// Assertion type constants.
const (
	AssertTriggerCount      = "trigger_count"
	AssertActiveStacks      = "active_stacks"
	AssertDurationRemaining = "duration_remaining"
	AssertLastSequence      = "last_sequence"
	AssertAbsorbPool        = "absorb_pool"
	AssertTotalFires        = "total_fires"
	AssertFireOrder         = "fire_order"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// DefinitionsFile is resolved relative to the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving DefinitionsFile against
// basePath.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the definitions path BEFORE validation
	if scenario.DefinitionsFile != "" && !filepath.IsAbs(scenario.DefinitionsFile) && basePath != "" {
		scenario.DefinitionsFile = filepath.Join(basePath, scenario.DefinitionsFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.DefinitionsFile == "" && len(s.Definitions) == 0 {
		return fmt.Errorf("definitions or definitions_file is required")
	}

	if s.Capacity < 0 {
		return fmt.Errorf("capacity must be non-negative")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.DefinitionsFile != "" {
		if _, err := os.Stat(s.DefinitionsFile); os.IsNotExist(err) {
			return fmt.Errorf("definitions file not found: %s", s.DefinitionsFile)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(fmt.Sprintf("steps[%d]", i), &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// stepKinds maps scenario actions to engine inputs.
var stepKinds = map[string]proc.InputKind{
	"advance":  proc.InputAdvance,
	"hit":      proc.InputHit,
	"crit":     proc.InputCrit,
	"kill":     proc.InputKill,
	"block":    proc.InputBlock,
	"dodge":    proc.InputDodge,
	"force":    proc.InputForce,
	"consume":  proc.InputConsume,
	"rate_cap": proc.InputRateCap,
}

// validateStep validates a step and, recursively, its Do block.
func validateStep(path string, st *Step) error {
	if st.Repeat < 0 {
		return fmt.Errorf("%s: repeat must be non-negative", path)
	}

	if len(st.Do) > 0 {
		if st.Action != "" {
			return fmt.Errorf("%s: action and do are mutually exclusive", path)
		}
		for i := range st.Do {
			if err := validateStep(fmt.Sprintf("%s.do[%d]", path, i), &st.Do[i]); err != nil {
				return err
			}
		}
		return nil
	}

	if st.Action == "" {
		return fmt.Errorf("%s: action is required", path)
	}

	kind, ok := stepKinds[st.Action]
	if !ok {
		return fmt.Errorf("%s: unknown action %q", path, st.Action)
	}

	switch kind {
	case proc.InputForce:
		if st.Proc == "" {
			return fmt.Errorf("%s: proc is required for force", path)
		}
	case proc.InputConsume:
		if st.Amount < 0 {
			return fmt.Errorf("%s: amount must be non-negative for consume", path)
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTriggerCount, AssertActiveStacks, AssertDurationRemaining, AssertLastSequence:
		if a.Proc == "" {
			return fmt.Errorf("assertions[%d]: proc is required for %s", index, a.Type)
		}
		if !a.bounded() {
			return fmt.Errorf("assertions[%d]: equals, min or max is required for %s", index, a.Type)
		}
	case AssertAbsorbPool, AssertTotalFires:
		if !a.bounded() {
			return fmt.Errorf("assertions[%d]: equals, min or max is required for %s", index, a.Type)
		}
	case AssertFireOrder:
		if len(a.Procs) == 0 {
			return fmt.Errorf("assertions[%d]: procs list is required for fire_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func (a *Assertion) bounded() bool {
	return a.Equals != nil || a.Min != nil || a.Max != nil
}

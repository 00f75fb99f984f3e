package procdef

import (
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/procforge/internal/proc"
)

// Record is the on-disk form of a proc definition.
// Trigger and StackRule are kept as strings so unknown names survive
// decoding and are reported by Validate.
type Record struct {
	Name       string `json:"name" yaml:"name" jsonschema:"title=Name,description=Display name (at most 31 characters),maxLength=31"`
	Trigger    string `json:"trigger" yaml:"trigger" jsonschema:"title=Trigger,required,enum=ON_HIT,enum=ON_CRIT,enum=ON_KILL,enum=ON_BLOCK,enum=ON_DODGE,enum=WHEN_LOW_HP"`
	ICDMs      int    `json:"icd_ms" yaml:"icd_ms" jsonschema:"title=Internal cooldown (ms),minimum=0"`
	DurationMs int    `json:"duration_ms" yaml:"duration_ms" jsonschema:"title=Effect duration (ms),description=0 for an instant effect,minimum=0"`
	Magnitude  int    `json:"magnitude" yaml:"magnitude" jsonschema:"title=Magnitude,description=Effect strength; absorption per stack for ON_BLOCK shields"`
	MaxStacks  int    `json:"max_stacks" yaml:"max_stacks" jsonschema:"title=Maximum stacks,description=0 for unlimited,minimum=0,maximum=50"`
	StackRule  string `json:"stack_rule" yaml:"stack_rule" jsonschema:"title=Stack rule,description=Defaults to REFRESH,enum=REFRESH,enum=STACK,enum=IGNORE"`
	Param      int    `json:"param" yaml:"param" jsonschema:"title=Parameter,description=Opaque value passed through to effect handlers"`
}

// File is a complete definition file: an ordered list of records.
type File []Record

// ToDefinition converts a record that passed Validate.
// An empty stack rule means REFRESH. Names are NFC normalized, the form
// the journal stores them in.
func (r Record) ToDefinition() (proc.Definition, error) {
	trig, err := proc.ParseTrigger(r.Trigger)
	if err != nil {
		return proc.Definition{}, err
	}
	rule := proc.Refresh
	if r.StackRule != "" {
		rule, err = proc.ParseStackRule(r.StackRule)
		if err != nil {
			return proc.Definition{}, err
		}
	}
	return proc.Definition{
		Name:       norm.NFC.String(r.Name),
		Trigger:    trig,
		ICDMs:      r.ICDMs,
		DurationMs: r.DurationMs,
		Magnitude:  r.Magnitude,
		MaxStacks:  r.MaxStacks,
		StackRule:  rule,
		Param:      r.Param,
	}, nil
}

// FromDefinition converts a registered definition back to its file form.
func FromDefinition(def proc.Definition) Record {
	return Record{
		Name:       def.Name,
		Trigger:    def.Trigger.String(),
		ICDMs:      def.ICDMs,
		DurationMs: def.DurationMs,
		Magnitude:  def.Magnitude,
		MaxStacks:  def.MaxStacks,
		StackRule:  def.StackRule.String(),
		Param:      def.Param,
	}
}

package procdef

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/procforge/internal/proc"
)

// MaxStacksLimit is the largest accepted max_stacks value.
const MaxStacksLimit = 50

// MaxNameLength is the longest accepted name, in bytes.
const MaxNameLength = 31

// Validation error codes (E200-E299)
const (
	ErrMalformedRecord = "E200" // record could not be decoded
	ErrInvalidTrigger  = "E201" // missing or unknown trigger
	ErrInvalidCooldown = "E202" // icd_ms < 0
	ErrInvalidDuration = "E203" // duration_ms < 0
	ErrInvalidStacks   = "E204" // max_stacks outside [0, 50]
	ErrInvalidRule     = "E205" // unknown stack_rule
	ErrInvalidName     = "E206" // name too long
)

// ValidationError represents one rejected field of a record.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a record against the authoring rules.
// Returns all errors found (does not fail-fast).
func Validate(r Record) []ValidationError {
	var errs []ValidationError

	// E201: trigger must name a known kind
	if strings.TrimSpace(r.Trigger) == "" {
		errs = append(errs, ValidationError{
			Field:   "trigger",
			Message: "trigger is required",
			Code:    ErrInvalidTrigger,
		})
	} else if _, err := proc.ParseTrigger(r.Trigger); err != nil {
		errs = append(errs, ValidationError{
			Field:   "trigger",
			Message: fmt.Sprintf("%q is not one of %s", r.Trigger, strings.Join(proc.TriggerNames(), ", ")),
			Code:    ErrInvalidTrigger,
		})
	}

	if r.ICDMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "icd_ms",
			Message: fmt.Sprintf("must be >= 0, got %d", r.ICDMs),
			Code:    ErrInvalidCooldown,
		})
	}

	if r.DurationMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "duration_ms",
			Message: fmt.Sprintf("must be >= 0, got %d", r.DurationMs),
			Code:    ErrInvalidDuration,
		})
	}

	if r.MaxStacks < 0 || r.MaxStacks > MaxStacksLimit {
		errs = append(errs, ValidationError{
			Field:   "max_stacks",
			Message: fmt.Sprintf("must be in [0, %d], got %d", MaxStacksLimit, r.MaxStacks),
			Code:    ErrInvalidStacks,
		})
	}

	// An empty rule defaults to REFRESH
	if r.StackRule != "" {
		if _, err := proc.ParseStackRule(r.StackRule); err != nil {
			errs = append(errs, ValidationError{
				Field:   "stack_rule",
				Message: fmt.Sprintf("%q is not one of %s", r.StackRule, strings.Join(proc.StackRuleNames(), ", ")),
				Code:    ErrInvalidRule,
			})
		}
	}

	if len(r.Name) > MaxNameLength {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("at most %d bytes, got %d", MaxNameLength, len(r.Name)),
			Code:    ErrInvalidName,
		})
	} else if !utf8.ValidString(r.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "not valid UTF-8",
			Code:    ErrInvalidName,
		})
	}

	return errs
}

// ValidateDefinition checks an in-memory definition with the same rules
// used for files. Names must also already be NFC: files are normalized by
// ToDefinition, definitions built in code are not.
func ValidateDefinition(def proc.Definition) []ValidationError {
	r := FromDefinition(def)
	// FromDefinition renders out-of-range enums as TRIGGER(n), which
	// Validate rejects by name.
	errs := Validate(r)
	if utf8.ValidString(def.Name) && !norm.NFC.IsNormalString(def.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "not in Unicode NFC form",
			Code:    ErrInvalidName,
		})
	}
	return errs
}

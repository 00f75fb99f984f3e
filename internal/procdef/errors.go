package procdef

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Rejection describes a record that was not loaded.
type Rejection struct {
	// Index is the record's position in its file (0-based).
	Index int
	Name  string

	// Errors holds field-level problems; Err holds anything else
	// (decode failures, registry capacity).
	Errors []ValidationError
	Err    error
}

// Error implements the error interface.
func (r Rejection) Error() string {
	label := fmt.Sprintf("record %d", r.Index)
	if r.Name != "" {
		label = fmt.Sprintf("record %d (%s)", r.Index, r.Name)
	}
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s: %v", label, r.Err)
	case len(r.Errors) == 1:
		return fmt.Sprintf("%s: %s", label, r.Errors[0].Error())
	case len(r.Errors) > 1:
		return fmt.Sprintf("%s: %s (and %d more)", label, r.Errors[0].Error(), len(r.Errors)-1)
	default:
		return label + ": rejected"
	}
}

// CompileError represents a CUE error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(field string, err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Report the first error with position info
	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   field,
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return &CompileError{Field: field, Message: first.Error()}
}

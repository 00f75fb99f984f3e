package proc

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error reported by an engine mutator.
//
// Runtime errors include:
//   - Capacity exceeded: Register called with every slot in use
//   - Invalid id: a mutator was given an id that was never issued
//   - Unknown input: Apply received an input kind it does not understand
//
// Read-only telemetry never returns RuntimeError; it degrades to zero values.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// ProcID identifies the affected proc, or -1 when not applicable.
	ProcID int

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeCapacityExceeded indicates every definition slot is taken.
	ErrCodeCapacityExceeded RuntimeErrorCode = "CAPACITY_EXCEEDED"

	// ErrCodeInvalidID indicates an out-of-range proc id.
	ErrCodeInvalidID RuntimeErrorCode = "INVALID_ID"

	// ErrCodeUnknownInput indicates an input kind Apply cannot handle.
	ErrCodeUnknownInput RuntimeErrorCode = "UNKNOWN_INPUT"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.ProcID >= 0 {
		return fmt.Sprintf("%s: %s (proc=%d)", e.Code, e.Message, e.ProcID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCapacityError returns true if the error is a capacity exceeded error.
// Uses errors.As to handle wrapped errors.
func IsCapacityError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeCapacityExceeded
	}
	return false
}

// IsInvalidIDError returns true if the error is an invalid id error.
// Uses errors.As to handle wrapped errors.
func IsInvalidIDError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidID
	}
	return false
}

// NewCapacityError creates a RuntimeError for a full registry.
func NewCapacityError(capacity int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeCapacityExceeded,
		Message: fmt.Sprintf("registry full (%d definitions)", capacity),
		ProcID:  -1,
		Details: map[string]string{
			"capacity": fmt.Sprintf("%d", capacity),
		},
	}
}

// NewInvalidIDError creates a RuntimeError for an id outside [0, count).
func NewInvalidIDError(id, count int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidID,
		Message: fmt.Sprintf("proc id out of range [0,%d)", count),
		ProcID:  id,
	}
}

package journal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/procforge/internal/canonical"
	"github.com/roach88/procforge/internal/proc"
	"github.com/roach88/procforge/internal/procdef"
)

// ErrSessionNotFound is returned when a session id is not in the journal.
var ErrSessionNotFound = errors.New("session not found")

// Session is the static part of a journaled run.
type Session struct {
	ID    string
	Label string

	// Capacity and RateCap are the engine settings at session start.
	// Rate cap changes during the session are journaled as inputs.
	Capacity int
	RateCap  int

	// Definitions in registration order; index is the proc id.
	Definitions []proc.Definition

	// DefinitionsHash is the canonical digest of Definitions.
	DefinitionsHash string
}

// SessionSummary is one row of ListSessions.
type SessionSummary struct {
	ID          string
	Label       string
	Definitions int
	Inputs      int
	Fires       int
}

// Fire is a journaled fire and the input step that produced it.
type Fire struct {
	Step   int
	Record proc.FireRecord
}

// definitionsValue converts definitions to the canonical encoder's value
// model, using the designer file field names.
func definitionsValue(defs []proc.Definition) []any {
	out := make([]any, len(defs))
	for i, r := range procdef.Records(defs) {
		out[i] = map[string]any{
			"name":        r.Name,
			"trigger":     r.Trigger,
			"icd_ms":      r.ICDMs,
			"duration_ms": r.DurationMs,
			"magnitude":   r.Magnitude,
			"max_stacks":  r.MaxStacks,
			"stack_rule":  r.StackRule,
			"param":       r.Param,
		}
	}
	return out
}

// marshalDefinitions returns the canonical JSON and digest for defs.
func marshalDefinitions(defs []proc.Definition) (string, string, error) {
	v := definitionsValue(defs)
	data, err := canonical.Marshal(v)
	if err != nil {
		return "", "", fmt.Errorf("marshal definitions: %w", err)
	}
	return string(data), canonical.Hash(canonical.DomainDefinitions, data), nil
}

// unmarshalDefinitions decodes stored definitions. Stored definitions were
// valid when written, so any rejection here means the row was altered.
func unmarshalDefinitions(data string) ([]proc.Definition, error) {
	var file procdef.File
	if err := json.Unmarshal([]byte(data), &file); err != nil {
		return nil, fmt.Errorf("unmarshal definitions: %w", err)
	}
	defs := make([]proc.Definition, len(file))
	for i, r := range file {
		def, err := r.ToDefinition()
		if err != nil {
			return nil, fmt.Errorf("definition %d: %w", i, err)
		}
		defs[i] = def
	}
	return defs, nil
}

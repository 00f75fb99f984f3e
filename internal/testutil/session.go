package testutil

// FixedSessionGenerator generates the same session id every time.
//
// This enables deterministic journaling and golden snapshot comparison.
// The same scenario with the same FixedSessionGenerator produces
// byte-identical journals.
//
// Unlike journal.FixedGenerator which returns ids in sequence, this
// generator always returns the same id. Use a fresh store per run: session
// ids are primary keys.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a new fixed session id generator.
//
// The id is typically set in the scenario YAML:
//
//	session_id: "test-session-aegis"
//
// If id is empty, Generate() returns "test-session-default".
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session id.
//
// Implements journal.IDGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}

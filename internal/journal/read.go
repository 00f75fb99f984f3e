package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/procforge/internal/canonical"
	"github.com/roach88/procforge/internal/proc"
)

// ReadSession returns the session header.
// Returns ErrSessionNotFound if the id is unknown.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	var (
		sess     Session
		defsJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, label, capacity, rate_cap, definitions, definitions_hash
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Label, &sess.Capacity, &sess.RateCap, &defsJSON, &sess.DefinitionsHash)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("read session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}

	if got := canonical.Hash(canonical.DomainDefinitions, []byte(defsJSON)); got != sess.DefinitionsHash {
		return Session{}, fmt.Errorf("read session %s: definitions hash mismatch (stored %s, computed %s)", id, sess.DefinitionsHash, got)
	}

	sess.Definitions, err = unmarshalDefinitions(defsJSON)
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns every session with row counts, ordered by id.
// UUIDv7 ids make this creation order.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.label, json_array_length(s.definitions),
			(SELECT COUNT(*) FROM inputs i WHERE i.session_id = s.id),
			(SELECT COUNT(*) FROM fires f WHERE f.session_id = s.id)
		FROM sessions s
		ORDER BY s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := []SessionSummary{}
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.ID, &sum.Label, &sum.Definitions, &sum.Inputs, &sum.Fires); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// ReadInputs returns the session's inputs ordered by step.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadInputs(ctx context.Context, sessionID string) ([]proc.Input, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, dt_ms, hp, hp_max, proc_id, stacks, duration_ms, amount
		FROM inputs
		WHERE session_id = ?
		ORDER BY step ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query inputs: %w", err)
	}
	defer rows.Close()

	out := []proc.Input{}
	for rows.Next() {
		var (
			in   proc.Input
			kind string
		)
		if err := rows.Scan(&kind, &in.DtMs, &in.HP, &in.HPMax, &in.ProcID, &in.Stacks, &in.DurationMs, &in.Amount); err != nil {
			return nil, fmt.Errorf("scan input: %w", err)
		}
		in.Kind = proc.InputKind(kind)
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inputs: %w", err)
	}
	return out, nil
}

// ReadFires returns the session's fire log ordered by seq.
func (s *Store) ReadFires(ctx context.Context, sessionID string) ([]Fire, error) {
	return s.queryFires(ctx, `
		SELECT step, seq, proc_id, name, trigger_kind, elapsed_ms, stacks, duration_remaining_ms
		FROM fires
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
}

// ReadProcFires returns the fires of one proc ordered by seq.
func (s *Store) ReadProcFires(ctx context.Context, sessionID string, procID int) ([]Fire, error) {
	return s.queryFires(ctx, `
		SELECT step, seq, proc_id, name, trigger_kind, elapsed_ms, stacks, duration_remaining_ms
		FROM fires
		WHERE session_id = ? AND proc_id = ?
		ORDER BY seq ASC
	`, sessionID, procID)
}

func (s *Store) queryFires(ctx context.Context, query string, args ...any) ([]Fire, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fires: %w", err)
	}
	defer rows.Close()

	out := []Fire{}
	for rows.Next() {
		var (
			f    Fire
			trig string
		)
		if err := rows.Scan(&f.Step, &f.Record.Seq, &f.Record.ProcID, &f.Record.Name, &trig,
			&f.Record.ElapsedMs, &f.Record.Stacks, &f.Record.DurationRemainingMs); err != nil {
			return nil, fmt.Errorf("scan fire: %w", err)
		}
		f.Record.Trigger, err = proc.ParseTrigger(trig)
		if err != nil {
			return nil, fmt.Errorf("fire %d: %w", f.Record.Seq, err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fires: %w", err)
	}
	return out, nil
}

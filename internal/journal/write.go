package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/procforge/internal/proc"
	"github.com/roach88/procforge/internal/procdef"
)

// CreateSession inserts a session header. sess.DefinitionsHash is computed
// here; any value set by the caller is ignored.
//
// Every definition must pass procdef.ValidateDefinition. A session that
// could not be read back or replayed exactly is refused.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	for i, def := range sess.Definitions {
		if errs := procdef.ValidateDefinition(def); len(errs) > 0 {
			return fmt.Errorf("create session: definition %d: %w", i, errs[0])
		}
	}

	defsJSON, hash, err := marshalDefinitions(sess.Definitions)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, label, capacity, rate_cap, definitions, definitions_hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		sess.ID,
		sess.Label,
		sess.Capacity,
		sess.RateCap,
		defsJSON,
		hash,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// AppendStep writes one input and the fires it produced in a single
// transaction.
func (s *Store) AppendStep(ctx context.Context, sessionID string, step int, in proc.Input, fires []proc.FireRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append step %d: %w", step, err)
	}
	defer tx.Rollback()

	if err := insertInput(ctx, tx, sessionID, step, in); err != nil {
		return fmt.Errorf("append step %d: %w", step, err)
	}
	for _, rec := range fires {
		if err := insertFire(ctx, tx, sessionID, step, rec); err != nil {
			return fmt.Errorf("append step %d: %w", step, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append step %d: %w", step, err)
	}
	return nil
}

func insertInput(ctx context.Context, tx *sql.Tx, sessionID string, step int, in proc.Input) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO inputs
		(session_id, step, kind, dt_ms, hp, hp_max, proc_id, stacks, duration_ms, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sessionID,
		step,
		string(in.Kind),
		in.DtMs,
		in.HP,
		in.HPMax,
		in.ProcID,
		in.Stacks,
		in.DurationMs,
		in.Amount,
	)
	if err != nil {
		return fmt.Errorf("write input: %w", err)
	}
	return nil
}

func insertFire(ctx context.Context, tx *sql.Tx, sessionID string, step int, rec proc.FireRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO fires
		(session_id, seq, step, proc_id, name, trigger_kind, elapsed_ms, stacks, duration_remaining_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sessionID,
		rec.Seq,
		step,
		rec.ProcID,
		rec.Name,
		rec.Trigger.String(),
		rec.ElapsedMs,
		rec.Stacks,
		rec.DurationRemainingMs,
	)
	if err != nil {
		return fmt.Errorf("write fire %d: %w", rec.Seq, err)
	}
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/procforge/internal/journal"
	"github.com/roach88/procforge/internal/proc"
	"github.com/roach88/procforge/internal/procdef"
)

// Command-level error codes (E001-E099). Record-level validation codes
// come from procdef (E200-E299).
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeLoadFailed  = "E004" // Definition file could not be parsed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeDatabase    = "E008" // Journal could not be opened or read
	ErrCodeNoSession   = "E009" // Session id not in the journal
	ErrCodeBadInput    = "E010" // Malformed input line
	ErrCodeRejected    = "E020" // One or more records rejected
	ErrCodeDivergence  = "E021" // Replay did not match the journal
	ErrCodeAnomaly     = "E022" // Audit found procs over the threshold
	ErrCodeTestFailed  = "E023" // One or more scenarios failed
)

// LoadError represents a file-level failure loading definitions.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// parseDefinitions parses one definition file, mapping failures to a
// LoadError.
func parseDefinitions(path string) (*procdef.Result, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("definition file not found: %s", path)}
	}
	res, err := procdef.ParseFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("cannot load %s", path), Err: err}
	}
	return res, nil
}

// loadEngine creates an engine from the configuration and registers the
// definitions in path. Skipped records are reported through f.
func loadEngine(opts *RootOptions, f *OutputFormatter, path string, extra ...proc.Option) (*proc.Engine, procdef.Report, error) {
	res, err := parseDefinitions(path)
	if err != nil {
		return nil, procdef.Report{}, err
	}

	engOpts := append(opts.Config.EngineOptions(opts.Logger), extra...)
	eng := proc.New(engOpts...)
	rep := procdef.Register(eng, res)
	for _, rej := range rep.Skipped {
		f.Warn("%s: skipped %v", path, rej)
	}
	f.VerboseLog("Registered %d definition(s) from %s", len(rep.Added), path)
	return eng, rep, nil
}

// loadErrorExit converts a loadEngine/parseDefinitions error to an
// ExitError after reporting it.
func loadErrorExit(f *OutputFormatter, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		msg := le.Message
		if le.Err != nil {
			msg = fmt.Sprintf("%s: %v", le.Message, le.Err)
		}
		_ = f.Error(le.Code, msg, nil)
		return WrapExitError(ExitCommandError, le.Code, err)
	}
	_ = f.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, ErrCodeGeneric, err)
}

// openJournal opens the journal named by --db or PROCFORGE_DB.
func openJournal(opts *RootOptions, f *OutputFormatter, flagPath string) (*journal.Store, error) {
	path := flagPath
	if path == "" {
		path = opts.Config.DBPath
	}
	if path == "" {
		_ = f.Error(ErrCodeDatabase, "no journal: pass --db or set PROCFORGE_DB", nil)
		return nil, NewExitError(ExitCommandError, "--db or PROCFORGE_DB is required")
	}
	st, err := journal.Open(path)
	if err != nil {
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// sessionErrorExit reports a journal read failure.
func sessionErrorExit(f *OutputFormatter, id string, err error) error {
	if errors.Is(err, journal.ErrSessionNotFound) {
		_ = f.Error(ErrCodeNoSession, fmt.Sprintf("session %s not found", id), nil)
		return WrapExitError(ExitCommandError, ErrCodeNoSession, err)
	}
	_ = f.Error(ErrCodeDatabase, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to read session", err)
}

// commandContext returns ctx, or Background when the command has none.
func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

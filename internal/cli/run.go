package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/procforge/internal/journal"
	"github.com/roach88/procforge/internal/proc"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Label    string
	Capacity int
	RateCap  int

	// IDs generates the journal session id. Nil means UUIDv7.
	// Tests inject a fixed generator.
	IDs journal.IDGenerator
}

// inputLine is one line of the run input stream.
//
//	{"kind":"advance","dt_ms":20,"hp":80,"hp_max":100}
//	{"kind":"crit"}
//	{"kind":"force","proc_id":2,"stacks":3,"duration_ms":1500}
type inputLine struct {
	Kind       string `json:"kind"`
	DtMs       int    `json:"dt_ms"`
	HP         int    `json:"hp"`
	HPMax      int    `json:"hp_max"`
	ProcID     int    `json:"proc_id"`
	Stacks     int    `json:"stacks"`
	DurationMs int    `json:"duration_ms"`
	Amount     int    `json:"amount"`
}

var inputKinds = map[string]proc.InputKind{
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

// FireOutput is one fire in run output.
type FireOutput struct {
	Seq       int64  `json:"seq"`
	ElapsedMs int64  `json:"elapsed_ms"`
	ProcID    int    `json:"proc_id"`
	Proc      string `json:"proc"`
	Trigger   string `json:"trigger"`
	Stacks    int    `json:"stacks"`
	Duration  int    `json:"duration_remaining_ms"`
}

// ProcTelemetry is the end-of-run telemetry of one proc.
type ProcTelemetry struct {
	ID                       int     `json:"id"`
	Name                     string  `json:"name"`
	TriggerCount             int     `json:"trigger_count"`
	Stacks                   int     `json:"stacks"`
	DurationRemainingMs      int     `json:"duration_remaining_ms"`
	LastFireSequence         int64   `json:"last_fire_sequence"`
	SessionUptimeRatio       float64 `json:"session_uptime_ratio"`
	SessionTriggersPerMinute float64 `json:"session_triggers_per_minute"`
}

// RunResult holds the outcome of a run.
type RunResult struct {
	Definitions int             `json:"definitions"`
	Skipped     int             `json:"skipped"`
	Inputs      int             `json:"inputs"`
	Fires       []FireOutput    `json:"fires"`
	AbsorbPool  int             `json:"absorb_pool"`
	ElapsedMs   int64           `json:"elapsed_ms"`
	SessionID   string          `json:"session_id,omitempty"`
	Procs       []ProcTelemetry `json:"procs"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <definitions>",
		Short: "Drive an engine with an input stream",
		Long: `Load a definition file and apply inputs read from stdin, one JSON
object per line. Blank lines and lines starting with # are ignored.

Input kinds: advance (dt_ms, hp, hp_max), hit, crit, kill, block, dodge,
force (proc_id, stacks, duration_ms), consume (amount), rate_cap (amount).

With --db (or PROCFORGE_DB) the run is journaled as a session that
replay, trace and audit can read back.

Exit codes:
  0 - Input stream applied
  2 - Command error (bad definitions, malformed input, database error)

Examples:
  procforge run procs.json < inputs.jsonl
  procforge run procs.yaml --db sessions.db --label "boss pull 3" < inputs.jsonl`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database (default $PROCFORGE_DB; empty disables journaling)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "session label")
	cmd.Flags().IntVar(&opts.Capacity, "capacity", 0, "definition slots (overrides PROCFORGE_CAPACITY)")
	cmd.Flags().IntVar(&opts.RateCap, "rate-cap", 0, "global fires per second (overrides PROCFORGE_RATE_CAP)")

	return cmd
}

func runRun(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger

	var extra []proc.Option
	if opts.Capacity > 0 {
		extra = append(extra, proc.WithCapacity(opts.Capacity))
	}
	if opts.RateCap > 0 {
		extra = append(extra, proc.WithRateCap(opts.RateCap))
	}

	eng, rep, err := loadEngine(opts.RootOptions, formatter, path, extra...)
	if err != nil {
		return loadErrorExit(formatter, err)
	}

	result := RunResult{
		Definitions: len(rep.Added),
		Skipped:     len(rep.Skipped),
		Fires:       []FireOutput{},
	}

	// The observer runs on the loop goroutine; only it touches result.Fires
	// and the output writer until Run returns.
	out := cmd.OutOrStdout()
	eng.Observe(proc.FireObserverFunc(func(rec proc.FireRecord) {
		fo := FireOutput{
			Seq:       rec.Seq,
			ElapsedMs: rec.ElapsedMs,
			ProcID:    rec.ProcID,
			Proc:      rec.Name,
			Trigger:   rec.Trigger.String(),
			Stacks:    rec.Stacks,
			Duration:  rec.DurationRemainingMs,
		}
		result.Fires = append(result.Fires, fo)
		if !formatter.JSON() {
			fmt.Fprintf(out, "[%d] %dms %s (%s) stacks=%d remaining=%dms\n",
				fo.Seq, fo.ElapsedMs, displayName(fo.Proc, fo.ProcID), fo.Trigger, fo.Stacks, fo.Duration)
		}
	}))

	ctx, cancel := context.WithCancel(commandContext(cmd.Context()))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var rec *journal.Recorder
	if opts.Database != "" || opts.Config.DBPath != "" {
		st, err := openJournal(opts.RootOptions, formatter, opts.Database)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		gen := opts.IDs
		if gen == nil {
			gen = journal.UUIDv7Generator{}
		}
		rec, err = journal.NewRecorder(ctx, st, eng, gen, opts.Label)
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to start session", err)
		}
		result.SessionID = rec.SessionID()
		logger.Info("session started", "session", rec.SessionID(), "definitions", eng.Count())
	}

	loop := proc.NewLoop(eng)
	readDone := make(chan readOutcome, 1)
	go func() {
		n, err := feedLoop(ctx, loop, rec, cmd.InOrStdin())
		readDone <- readOutcome{inputs: n, err: err}
		loop.Stop()
	}()

	if err := loop.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Info("run interrupted")
			return NewExitError(ExitCommandError, "interrupted")
		}
		return WrapExitError(ExitFailure, "engine error", err)
	}

	outcome := <-readDone
	result.Inputs = outcome.inputs
	if outcome.err != nil {
		var bad *badInputError
		if errors.As(outcome.err, &bad) {
			_ = formatter.Error(ErrCodeBadInput, bad.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodeBadInput, outcome.err)
		}
		_ = formatter.Error(ErrCodeDatabase, outcome.err.Error(), nil)
		return WrapExitError(ExitCommandError, "run failed", outcome.err)
	}

	result.Procs = procTelemetry(eng)
	result.AbsorbPool = eng.AbsorbPool()
	result.ElapsedMs = eng.ElapsedMs()

	logger.Info("run completed", "inputs", result.Inputs, "fires", len(result.Fires))

	if formatter.JSON() {
		return formatter.Success(result)
	}
	return outputRunText(out, result)
}

type readOutcome struct {
	inputs int
	err    error
}

// badInputError reports a malformed input line.
type badInputError struct {
	Line int
	Err  error
}

func (e *badInputError) Error() string {
	return fmt.Sprintf("input line %d: %v", e.Line, e.Err)
}

func (e *badInputError) Unwrap() error {
	return e.Err
}

// feedLoop reads input lines from r and hands them to loop until EOF.
// Journaled inputs go through Do so each one is written before the next
// is applied.
func feedLoop(ctx context.Context, loop *proc.Loop, rec *journal.Recorder, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	lineNo, n := 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		in, err := parseInputLine([]byte(line))
		if err != nil {
			return n, &badInputError{Line: lineNo, Err: err}
		}

		if rec == nil {
			if !loop.Enqueue(in) {
				return n, proc.ErrLoopStopped
			}
			n++
			continue
		}

		var journalErr error
		err = loop.Do(ctx, func(*proc.Engine) {
			if _, err := rec.Apply(ctx, in); err != nil {
				var re *proc.RuntimeError
				if !errors.As(err, &re) {
					journalErr = err
				}
			}
		})
		if err != nil {
			return n, err
		}
		if journalErr != nil {
			return n, journalErr
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("read input: %w", err)
	}
	return n, nil
}

// parseInputLine decodes one JSON input object. Unknown fields are rejected.
func parseInputLine(data []byte) (proc.Input, error) {
	var line inputLine
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&line); err != nil {
		return proc.Input{}, err
	}
	kind, ok := inputKinds[line.Kind]
	if !ok {
		return proc.Input{}, fmt.Errorf("unknown kind %q", line.Kind)
	}
	return proc.Input{
		Kind:       kind,
		DtMs:       line.DtMs,
		HP:         line.HP,
		HPMax:      line.HPMax,
		ProcID:     line.ProcID,
		Stacks:     line.Stacks,
		DurationMs: line.DurationMs,
		Amount:     line.Amount,
	}, nil
}

// procTelemetry snapshots every proc. eng must not be in use by a Loop.
func procTelemetry(eng *proc.Engine) []ProcTelemetry {
	snaps := eng.Snapshots()
	out := make([]ProcTelemetry, len(snaps))
	for i, s := range snaps {
		out[i] = ProcTelemetry{
			ID:                       i,
			Name:                     s.Definition.Name,
			TriggerCount:             s.State.TriggerCount,
			Stacks:                   s.State.Stacks,
			DurationRemainingMs:      s.State.DurationRemainingMs,
			LastFireSequence:         s.State.LastFireSequence,
			SessionUptimeRatio:       s.SessionUptimeRatio,
			SessionTriggersPerMinute: s.SessionTriggersPerMinute,
		}
	}
	return out
}

// displayName falls back to the id for unnamed procs.
func displayName(name string, id int) string {
	if name == "" {
		return fmt.Sprintf("#%d", id)
	}
	return name
}

func outputRunText(w io.Writer, result RunResult) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d input(s), %d fire(s), %dms elapsed\n", result.Inputs, len(result.Fires), result.ElapsedMs)
	if result.SessionID != "" {
		fmt.Fprintf(w, "Session: %s\n", result.SessionID)
	}
	writeTelemetryTable(w, result.Procs)
	return nil
}

// writeTelemetryTable prints one row per proc.
func writeTelemetryTable(w io.Writer, procs []ProcTelemetry) {
	if len(procs) == 0 {
		return
	}
	fmt.Fprintf(w, "%-4s %-24s %8s %7s %9s %8s\n", "ID", "NAME", "FIRES", "STACKS", "UPTIME", "PER-MIN")
	for _, p := range procs {
		fmt.Fprintf(w, "%-4d %-24s %8d %7d %8.1f%% %8.1f\n",
			p.ID, displayName(p.Name, p.ID), p.TriggerCount, p.Stacks, p.SessionUptimeRatio*100, p.SessionTriggersPerMinute)
	}
}

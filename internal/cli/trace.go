package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/procforge/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Proc     string // proc name filter
}

// TraceEntry is one journaled fire.
type TraceEntry struct {
	Step int `json:"step"`
	FireOutput
}

// TraceResult holds the trace command output.
type TraceResult struct {
	SessionID string       `json:"session_id"`
	Label     string       `json:"label,omitempty"`
	Fires     []TraceEntry `json:"fires"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <session-id>",
		Short: "Show the fire log of a journaled session",
		Long: `Print every journaled fire of a session in sequence order, with the
input step that produced it.

Examples:
  procforge trace 0190f3c2-... --db sessions.db
  procforge trace 0190f3c2-... --proc Flurry --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database (default $PROCFORGE_DB)")
	cmd.Flags().StringVar(&opts.Proc, "proc", "", "only show fires of this proc name")

	return cmd
}

func runTrace(opts *TraceOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd.Context())

	st, err := openJournal(opts.RootOptions, formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := st.ReadSession(ctx, id)
	if err != nil {
		return sessionErrorExit(formatter, id, err)
	}

	var fires []journal.Fire
	if opts.Proc != "" {
		procID := -1
		for i, def := range sess.Definitions {
			if def.Name == opts.Proc {
				procID = i
				break
			}
		}
		if procID < 0 {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("proc %q not in session %s", opts.Proc, id), nil)
			return NewExitError(ExitCommandError, "unknown proc")
		}
		fires, err = st.ReadProcFires(ctx, id, procID)
	} else {
		fires, err = st.ReadFires(ctx, id)
	}
	if err != nil {
		return sessionErrorExit(formatter, id, err)
	}

	result := TraceResult{SessionID: sess.ID, Label: sess.Label, Fires: make([]TraceEntry, len(fires))}
	for i, f := range fires {
		result.Fires[i] = TraceEntry{
			Step: f.Step,
			FireOutput: FireOutput{
				Seq:       f.Record.Seq,
				ElapsedMs: f.Record.ElapsedMs,
				ProcID:    f.Record.ProcID,
				Proc:      f.Record.Name,
				Trigger:   f.Record.Trigger.String(),
				Stacks:    f.Record.Stacks,
				Duration:  f.Record.DurationRemainingMs,
			},
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	header := sess.ID
	if sess.Label != "" {
		header = fmt.Sprintf("%s (%s)", sess.ID, sess.Label)
	}
	fmt.Fprintf(w, "Session %s: %d fire(s)\n", header, len(result.Fires))
	for _, e := range result.Fires {
		fmt.Fprintf(w, "  [%d] step %d, %dms %s (%s) stacks=%d remaining=%dms\n",
			e.Seq, e.Step, e.ElapsedMs, displayName(e.Proc, e.ProcID), e.Trigger, e.Stacks, e.Duration)
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/procforge/internal/journal"
	"github.com/roach88/procforge/internal/proc"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// SessionReplay is the replay outcome of one session.
type SessionReplay struct {
	SessionID  string `json:"session_id"`
	Label      string `json:"label,omitempty"`
	Inputs     int    `json:"inputs"`
	Fires      int    `json:"fires"`
	Matched    bool   `json:"matched"`
	Divergence string `json:"divergence,omitempty"`
}

// ReplayResult holds the replay command output.
type ReplayResult struct {
	Sessions []SessionReplay `json:"sessions"`
	Matched  int             `json:"matched"`
	Diverged int             `json:"diverged"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [session-id]",
		Short: "Replay journaled sessions and check determinism",
		Long: `Rebuild each session's engine from the journal, re-apply its inputs and
compare the resulting fires with the journaled fire log.

Without a session id every session in the journal is replayed.

Exit codes:
  0 - Every replay matched
  1 - At least one replay diverged
  2 - Command error (database error, unknown session)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			return runReplay(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database (default $PROCFORGE_DB)")

	return cmd
}

func runReplay(opts *ReplayOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd.Context())

	st, err := openJournal(opts.RootOptions, formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var ids []string
	if len(args) == 1 {
		ids = args
	} else {
		sums, err := st.ListSessions(ctx)
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range sums {
			ids = append(ids, s.ID)
		}
	}

	result := ReplayResult{Sessions: make([]SessionReplay, 0, len(ids))}
	for _, id := range ids {
		formatter.VerboseLog("Replaying %s", id)
		res, err := journal.Replay(ctx, st, id, proc.WithLogger(opts.Logger))
		if err != nil {
			return sessionErrorExit(formatter, id, err)
		}

		sr := SessionReplay{
			SessionID: id,
			Label:     res.Session.Label,
			Inputs:    res.Inputs,
			Fires:     len(res.Fires),
			Matched:   res.Matched(),
		}
		if res.Divergence != nil {
			sr.Divergence = res.Divergence.String()
			result.Diverged++
			opts.Logger.Warn("replay diverged", "session", id, "divergence", sr.Divergence)
		} else {
			result.Matched++
		}
		result.Sessions = append(result.Sessions, sr)
	}

	if formatter.JSON() {
		if result.Diverged == 0 {
			return formatter.Success(result)
		}
		if err := formatter.Failure(ErrCodeDivergence, fmt.Sprintf("%d session(s) diverged", result.Diverged), result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d session(s) diverged", result.Diverged))
	}

	w := cmd.OutOrStdout()
	for _, sr := range result.Sessions {
		if sr.Matched {
			fmt.Fprintf(w, "✓ %s: %d input(s), %d fire(s) reproduced\n", sr.SessionID, sr.Inputs, sr.Fires)
			continue
		}
		fmt.Fprintf(w, "✗ %s: %s\n", sr.SessionID, sr.Divergence)
	}

	if result.Diverged > 0 {
		fmt.Fprintf(w, "✗ %d of %d session(s) diverged\n", result.Diverged, len(result.Sessions))
		return NewExitError(ExitFailure, fmt.Sprintf("%d session(s) diverged", result.Diverged))
	}
	if len(result.Sessions) == 0 {
		fmt.Fprintln(w, "No sessions")
		return nil
	}
	fmt.Fprintln(w, "✓ All replays matched")
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/procforge/internal/journal"
	"github.com/roach88/procforge/internal/proc"
)

// AuditOptions holds flags for the audit command.
type AuditOptions struct {
	*RootOptions
	Database     string
	MaxPerMinute float64
}

// AnomalyOutput is one proc over the audit threshold.
type AnomalyOutput struct {
	ProcID            int     `json:"proc_id"`
	Name              string  `json:"name"`
	TriggersPerMinute float64 `json:"triggers_per_minute"`
}

// AuditResult holds the audit command output.
type AuditResult struct {
	SessionID    string          `json:"session_id"`
	MaxPerMinute float64         `json:"max_per_minute"`
	ElapsedMs    int64           `json:"elapsed_ms"`
	Anomalies    []AnomalyOutput `json:"anomalies"`
	Procs        []ProcTelemetry `json:"procs"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "audit <session-id>",
		Short: "Flag procs that fire faster than a threshold",
		Long: `Replay a journaled session and report every proc whose fire rate over
the whole session exceeds --max-per-minute.

Exit codes:
  0 - No anomalies
  1 - One or more procs over the threshold
  2 - Command error (database error, unknown session)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			return runAudit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database (default $PROCFORGE_DB)")
	cmd.Flags().Float64Var(&opts.MaxPerMinute, "max-per-minute", 0, "fires per minute threshold (default $PROCFORGE_AUDIT_MAX_PER_MINUTE)")

	return cmd
}

func runAudit(opts *AuditOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd.Context())

	threshold := opts.MaxPerMinute
	if threshold <= 0 {
		threshold = opts.Config.AuditMaxPerMinute
	}

	st, err := openJournal(opts.RootOptions, formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := journal.Replay(ctx, st, id, proc.WithLogger(opts.Logger))
	if err != nil {
		return sessionErrorExit(formatter, id, err)
	}
	if res.Divergence != nil {
		formatter.Warn("session %s does not replay cleanly: %s", id, res.Divergence)
	}

	result := AuditResult{
		SessionID:    id,
		MaxPerMinute: threshold,
		ElapsedMs:    res.Engine.ElapsedMs(),
		Anomalies:    []AnomalyOutput{},
		Procs:        procTelemetry(res.Engine),
	}
	for _, a := range res.Engine.ScanAnomalies(threshold) {
		result.Anomalies = append(result.Anomalies, AnomalyOutput(a))
	}

	if len(result.Anomalies) > 0 {
		opts.Logger.Warn("audit found anomalies", "session", id, "count", len(result.Anomalies))
	}

	if formatter.JSON() {
		if len(result.Anomalies) == 0 {
			return formatter.Success(result)
		}
		if err := formatter.Failure(ErrCodeAnomaly, fmt.Sprintf("%d proc(s) over %.1f fires/min", len(result.Anomalies), threshold), result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "anomalies found")
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Session %s: %dms, threshold %.1f fires/min\n", id, result.ElapsedMs, threshold)
	writeTelemetryTable(w, result.Procs)
	if len(result.Anomalies) == 0 {
		fmt.Fprintln(w, "✓ No anomalies")
		return nil
	}
	for _, a := range result.Anomalies {
		fmt.Fprintf(w, "✗ %s: %.1f fires/min\n", displayName(a.Name, a.ProcID), a.TriggersPerMinute)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d anomalies found", len(result.Anomalies)))
}

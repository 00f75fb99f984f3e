package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SessionRow is one journaled session.
type SessionRow struct {
	ID          string `json:"id"`
	Label       string `json:"label,omitempty"`
	Definitions int    `json:"definitions"`
	Inputs      int    `json:"inputs"`
	Fires       int    `json:"fires"`
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:           "sessions",
		Short:         "List journaled sessions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			return runSessions(rootOpts, database, cmd)
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "journal database (default $PROCFORGE_DB)")

	return cmd
}

func runSessions(opts *RootOptions, database string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openJournal(opts, formatter, database)
	if err != nil {
		return err
	}
	defer st.Close()

	sums, err := st.ListSessions(commandContext(cmd.Context()))
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	rows := make([]SessionRow, len(sums))
	for i, s := range sums {
		rows[i] = SessionRow(s)
	}

	if formatter.JSON() {
		return formatter.Success(rows)
	}

	w := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(w, "No sessions")
		return nil
	}
	fmt.Fprintf(w, "%-36s %5s %7s %6s  %s\n", "ID", "DEFS", "INPUTS", "FIRES", "LABEL")
	for _, r := range rows {
		fmt.Fprintf(w, "%-36s %5d %7d %6d  %s\n", r.ID, r.Definitions, r.Inputs, r.Fires, r.Label)
	}
	return nil
}

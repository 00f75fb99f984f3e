package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/procforge/internal/procdef"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	To     string // "json" | "yaml"
	Output string
}

// ExportResult reports a file export.
type ExportResult struct {
	Path        string `json:"path"`
	Format      string `json:"format"`
	Definitions int    `json:"definitions"`
	Skipped     int    `json:"skipped"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Convert a definition file to JSON or YAML",
		Long: `Load a definition file into an engine and export the registered
definitions, in registration order, as JSON or YAML.

Records that fail validation or exceed PROCFORGE_CAPACITY are skipped
with a warning on stderr. The export is what the engine actually holds.

Examples:
  procforge export procs.lua --to json
  procforge export procs.cue --to yaml -o procs.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "json", "export format (json|yaml)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to a file instead of stdout")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	format := procdef.Format(opts.To)
	if format != procdef.FormatJSON && format != procdef.FormatYAML {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("unsupported export format %q (want json or yaml)", opts.To), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("unsupported export format %q", opts.To))
	}

	eng, rep, err := loadEngine(opts.RootOptions, formatter, path)
	if err != nil {
		return loadErrorExit(formatter, err)
	}

	var buf bytes.Buffer
	if err := procdef.Export(&buf, eng.Definitions(), format); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "export failed", err)
	}

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(opts.Output, buf.Bytes(), 0644); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write export", err)
	}

	result := ExportResult{
		Path:        opts.Output,
		Format:      string(format),
		Definitions: eng.Count(),
		Skipped:     len(rep.Skipped),
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d definition(s) to %s\n", result.Definitions, result.Path)
	return nil
}

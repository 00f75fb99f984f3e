package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/procforge/internal/procdef"
)

// RejectedRecord is one record that failed validation.
type RejectedRecord struct {
	Index   int                       `json:"index"`
	Name    string                    `json:"name,omitempty"`
	Errors  []procdef.ValidationError `json:"errors,omitempty"`
	Message string                    `json:"message,omitempty"`
}

// FileValidation is the validation outcome of one definition file.
type FileValidation struct {
	Path     string           `json:"path"`
	Accepted int              `json:"accepted"`
	Rejected []RejectedRecord `json:"rejected,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate proc definition files",
		Long: `Validate proc definition files without loading them into an engine.

Accepts .json, .yaml, .yml, .cue and .lua files. Every record is checked
and every problem reported; a bad record never hides the ones after it.

Exit codes:
  0 - All records valid
  1 - One or more records rejected
  2 - Command error (missing file, syntax error, etc.)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.prepare(cmd); err != nil {
				return err
			}
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	rejected := 0

	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		res, err := parseDefinitions(path)
		if err != nil {
			return loadErrorExit(formatter, err)
		}

		fv := FileValidation{Path: path, Accepted: len(res.Entries)}
		for _, rej := range res.Rejected {
			rr := RejectedRecord{Index: rej.Index, Name: rej.Name, Errors: rej.Errors}
			if rej.Err != nil {
				rr.Message = rej.Err.Error()
			}
			fv.Rejected = append(fv.Rejected, rr)
		}
		rejected += len(fv.Rejected)
		result.Files = append(result.Files, fv)
	}
	result.Valid = rejected == 0

	if formatter.JSON() {
		if result.Valid {
			return formatter.Success(result)
		}
		if err := formatter.Failure(ErrCodeRejected, fmt.Sprintf("%d record(s) rejected", rejected), result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d rejected record(s)", rejected))
	}

	return outputValidateText(formatter, result, rejected)
}

func outputValidateText(formatter *OutputFormatter, result ValidationResult, rejected int) error {
	w := formatter.Writer
	for _, fv := range result.Files {
		name := filepath.Base(fv.Path)
		if len(fv.Rejected) == 0 {
			fmt.Fprintf(w, "✓ %s: %d definition(s)\n", name, fv.Accepted)
			continue
		}

		fmt.Fprintf(w, "✗ %s: %d accepted, %d rejected\n", name, fv.Accepted, len(fv.Rejected))
		for _, rr := range fv.Rejected {
			label := fmt.Sprintf("record %d", rr.Index)
			if rr.Name != "" {
				label += fmt.Sprintf(" (%s)", rr.Name)
			}
			fmt.Fprintf(w, "  %s\n", label)
			for _, e := range rr.Errors {
				if e.Line > 0 {
					fmt.Fprintf(w, "    line %d: %s: %s: %s\n", e.Line, e.Code, e.Field, e.Message)
				} else {
					fmt.Fprintf(w, "    %s: %s: %s\n", e.Code, e.Field, e.Message)
				}
			}
			if rr.Message != "" {
				fmt.Fprintf(w, "    %s\n", rr.Message)
			}
		}
	}

	if rejected > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "✗ Validation failed")
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d rejected record(s)", rejected))
	}

	fmt.Fprintln(w, "✓ All definitions valid")
	return nil
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/termstore/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool       `json:"valid"`
	Assemblages []string   `json:"assemblages,omitempty"`
	Errors      []CLIError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var failFast bool

	cmd := &cobra.Command{
		Use:   "validate <definitions-dir>",
		Short: "Validate assemblage definitions without writing them",
		Long: `Compile and check CUE assemblage definitions without opening a store.

Reports every error found, so it is the fast feedback loop while
editing definitions. Use define to write them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := LoadModeCollectAll
			if failFast {
				mode = LoadModeFailFast
			}
			return runValidate(rootOpts, args[0], mode, cmd)
		},
	}
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first invalid assemblage")

	return cmd
}

func runValidate(opts *RootOptions, dir string, mode LoadMode, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadAssemblages(dir, mode)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := parseLoadError(loadErrors[0])
		return formatter.FailCode(code, message)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	result := ValidationResult{Valid: len(loadErrors) == 0}
	for _, a := range loadResult.Assemblages {
		result.Assemblages = append(result.Assemblages, a.Label)
	}
	for _, err := range loadErrors {
		code, message := parseLoadError(err)
		result.Errors = append(result.Errors, CLIError{Code: code, Message: message})
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	if formatter.Format == config.FormatJSON {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d assemblage definition(s) valid\n", len(result.Assemblages))
	return nil
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == config.FormatJSON {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		for _, e := range result.Errors {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", e.Code, e.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}

// parseLoadError extracts error code and message from a loader error.
func parseLoadError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		if loadErr.Pos.IsValid() {
			return loadErr.Code, fmt.Sprintf("%s:%d:%d: %s",
				loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column(), loadErr.Message)
		}
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

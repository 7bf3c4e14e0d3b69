package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/termstore/internal/config"
	"github.com/roach88/termstore/internal/ids"
	"github.com/roach88/termstore/internal/schema"
)

// DefinedAssemblage reports one assemblage written by define.
type DefinedAssemblage struct {
	Label   string  `json:"label"`
	UUID    string  `json:"uuid"`
	Nid     ids.Nid `json:"nid"`
	Name    string  `json:"name,omitempty"`
	Columns int     `json:"columns"`
}

// NewDefineCommand creates the define command.
func NewDefineCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "define <definitions-dir>",
		Short: "Write CUE assemblage definitions to the store",
		Long: `Compile CUE assemblage definitions and write each one to the store
as a dynamic usage description.

Definitions are all validated before anything is written. Defining an
assemblage again appends new versions and retires columns that were
removed.

Examples:
  termstore define ./definitions
  termstore define ./definitions --db ./terms.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefine(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runDefine(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadAssemblages(dir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := parseLoadError(loadErrors[0])
		return formatter.FailCode(code, message)
	}
	if len(loadErrors) > 0 {
		result := ValidationResult{}
		for _, err := range loadErrors {
			code, message := parseLoadError(err)
			result.Errors = append(result.Errors, CLIError{Code: code, Message: message})
		}
		return outputValidationErrors(formatter, result)
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("open store", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	var defined []DefinedAssemblage
	for _, a := range loadResult.Assemblages {
		formatter.VerboseLog("Defining assemblage: %s", a.Label)
		nid, err := schema.Define(ctx, st, a.Definition)
		if err != nil {
			return formatter.Fail(fmt.Sprintf("define assemblage %s", a.Label), err)
		}
		defined = append(defined, DefinedAssemblage{
			Label:   a.Label,
			UUID:    a.Definition.Assemblage.String(),
			Nid:     nid,
			Name:    a.Definition.Name,
			Columns: len(a.Definition.Columns),
		})
	}

	if formatter.Format == config.FormatJSON {
		return formatter.Success(defined)
	}

	fmt.Fprintf(formatter.Writer, "✓ Defined %d assemblage(s) in %s\n\n", len(defined), opts.DB)
	for _, d := range defined {
		fmt.Fprintf(formatter.Writer, "  %s: %s (nid %d), %d column(s)\n", d.Label, d.UUID, d.Nid, d.Columns)
	}
	return nil
}

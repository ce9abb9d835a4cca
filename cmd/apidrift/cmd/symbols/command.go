// Package symbols implements the symbols command, which prints the code
// symbols tree-sitter extracts from source trees.
package symbols

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/apidrift/internal/appcontext"
	"github.com/agentstation/apidrift/internal/cmd/inputs"
	"github.com/agentstation/apidrift/internal/cmd/output"
	"github.com/agentstation/apidrift/internal/cmd/table"
	"github.com/agentstation/apidrift/pkg/logging"
	"github.com/agentstation/apidrift/pkg/records"
)

// NewCommand creates the symbols command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:     "symbols PATH...",
		GroupID: "core",
		Short:   "List code symbols extracted from source trees",
		Long: `Symbols parses Go and Python sources and prints the symbols the
reconcile command would see. Use --output json or yaml to produce
analyzer output that reconcile accepts through --code.`,
		Example: `  apidrift symbols ./pkg
  apidrift symbols ./src -o yaml > symbols.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			files, err := inputs.Code(ctx, args, workers)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			if _, err := output.ParseFormat(string(format)); err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), format, flatten(files), table.SymbolsToTableData(files))
		},
	}
	cmd.Flags().IntVar(&workers, "workers", app.Settings().Workers, "files parsed concurrently")
	return cmd
}

// flatten joins per-file symbol lists into one analyzer output document.
func flatten(files [][]records.RawCodeSymbol) []records.RawCodeSymbol {
	out := []records.RawCodeSymbol{}
	for _, f := range files {
		out = append(out, f...)
	}
	return out
}

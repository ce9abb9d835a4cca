// Package reconcile implements the reconcile command.
package reconcile

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/apidrift"
	"github.com/agentstation/apidrift/internal/appcontext"
	"github.com/agentstation/apidrift/internal/cmd/inputs"
	"github.com/agentstation/apidrift/internal/cmd/output"
	"github.com/agentstation/apidrift/internal/cmd/table"
	"github.com/agentstation/apidrift/pkg/cache"
	"github.com/agentstation/apidrift/pkg/conflicts"
	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/logging"
	"github.com/agentstation/apidrift/pkg/provenance"
	"github.com/agentstation/apidrift/pkg/reconciler"
	"github.com/agentstation/apidrift/pkg/report"
)

// ThresholdError is returned when more high severity conflicts were found
// than --fail-on-high allows.
type ThresholdError struct {
	High      int
	Threshold int
}

// Error implements the error interface
func (e *ThresholdError) Error() string {
	return fmt.Sprintf("%d high severity conflicts exceed the allowed %d", e.High, e.Threshold)
}

// Flags holds the reconcile command flags.
type Flags struct {
	Docs       []string
	Code       []string
	Mode       string
	Report     string
	Out        string
	FailOnHigh int
	Provenance string
	Cache      string
	Exclude    []string
	Severity   map[string]string
	Workers    int
	Summary    bool
}

// NewCommand creates the reconcile command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	settings := app.Settings()
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "reconcile",
		GroupID: "core",
		Short:   "Reconcile documentation pages with source code",
		Long: `Reconcile normalizes scraped documentation pages and code symbols,
matches them by identity, classifies discrepancies and renders a merged
report.

Documentation input is scraper output (JSON or YAML, one page per file).
Code input is either analyzer output (JSON or YAML) or Go and Python
source trees, parsed directly.`,
		Example: `  apidrift reconcile --docs pages/ --code src/
  apidrift reconcile --docs pages/ --code symbols.json --report json --out merged.json
  apidrift reconcile --docs pages/ --code src/ --mode ai_assisted --fail-on-high 0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.Docs, "docs", nil, "documentation page files or directories")
	cmd.Flags().StringSliceVar(&flags.Code, "code", nil, "analyzer output files or source directories")
	cmd.Flags().StringVarP(&flags.Mode, "mode", "m", settings.Mode, "merge mode: rule_based, ai_assisted")
	cmd.Flags().StringVarP(&flags.Report, "report", "r", settings.Report, "report style: json, yaml, annotated_markdown")
	cmd.Flags().StringVar(&flags.Out, "out", "", "write the report to a file instead of stdout")
	cmd.Flags().IntVar(&flags.FailOnHigh, "fail-on-high", -1, "exit non-zero when high severity conflicts exceed N (negative disables)")
	cmd.Flags().StringVar(&flags.Provenance, "provenance", settings.ProvenancePath, "write resolution provenance to a YAML file")
	cmd.Flags().StringVar(&flags.Cache, "cache", settings.CachePath, "bbolt file caching normalized inputs")
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", nil, "identity glob or regex patterns to skip")
	cmd.Flags().StringToStringVar(&flags.Severity, "severity", nil, "severity overrides, e.g. missing_in_docs=low,description_mismatch=ignore")
	cmd.Flags().IntVar(&flags.Workers, "workers", settings.Workers, "files normalized and parsed concurrently")
	cmd.Flags().BoolVar(&flags.Summary, "summary", true, "print a summary table to stderr")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, flags *Flags) error {
	ctx := logging.WithLogger(cmd.Context(), app.Logger())
	logger := app.Logger()

	if len(flags.Docs) == 0 && len(flags.Code) == 0 {
		return errors.NewValidationError("docs", nil, "at least one of --docs or --code is required")
	}
	style, err := report.ParseStyle(flags.Report)
	if err != nil {
		return err
	}
	mode, err := reconciler.ParseMode(flags.Mode)
	if err != nil {
		return err
	}

	pages, err := inputs.Docs(ctx, flags.Docs)
	if err != nil {
		return err
	}
	files, err := inputs.Code(ctx, flags.Code, flags.Workers)
	if err != nil {
		return err
	}
	ctx = logging.WithFields(ctx, map[string]any{
		"mode":   mode.String(),
		"report": style.String(),
	})
	logging.FromContext(ctx).Debug().
		Int("pages", len(pages)).
		Int("files", len(files)).
		Msg("loaded inputs")

	opts := []apidrift.Option{
		apidrift.WithMode(mode),
		apidrift.WithProvenance(flags.Provenance != ""),
		apidrift.WithExclusions(flags.Exclude...),
	}
	if flags.Workers > 0 {
		opts = append(opts, apidrift.WithWorkers(flags.Workers))
	}
	if len(flags.Severity) > 0 {
		opts = append(opts, apidrift.WithSeverityOverrides(flags.Severity))
	}
	if flags.Cache != "" {
		store, err := cache.OpenBolt(flags.Cache)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn().Err(err).Str("path", flags.Cache).Msg("closing cache")
			}
		}()
		opts = append(opts, apidrift.WithCache(store))
	}

	engine, err := app.Engine(ctx, opts...)
	if err != nil {
		return err
	}
	set, err := engine.Reconcile(ctx, pages, files)
	if err != nil {
		return err
	}

	rendered, err := engine.Report(set, style)
	if err != nil {
		return err
	}
	if err := writeReport(cmd.OutOrStdout(), flags.Out, rendered); err != nil {
		return err
	}

	if flags.Provenance != "" {
		if err := provenance.Save(flags.Provenance, set.Provenance); err != nil {
			return err
		}
		logger.Debug().Str("path", flags.Provenance).Msg("wrote provenance")
	}

	if flags.Summary {
		format, err := output.ParseFormat(app.OutputFormat())
		if err != nil {
			return err
		}
		if format == "" {
			format = output.FormatTable
		}
		if err := output.Write(cmd.ErrOrStderr(), format, set.Summary, table.SummaryToTableData(set.Summary)); err != nil {
			return err
		}
	}

	high := set.Summary.Count(conflicts.SeverityHigh)
	if flags.FailOnHigh >= 0 && high > flags.FailOnHigh {
		return &ThresholdError{High: high, Threshold: flags.FailOnHigh}
	}
	return nil
}

func writeReport(stdout io.Writer, path, rendered string) error {
	if path == "" {
		_, err := io.WriteString(stdout, rendered)
		if err == nil && len(rendered) > 0 && rendered[len(rendered)-1] != '\n' {
			_, err = io.WriteString(stdout, "\n")
		}
		return err
	}
	//nolint:gosec // reports are meant to be shared
	return errors.WrapIO("write", path, os.WriteFile(path, []byte(rendered), 0o644))
}

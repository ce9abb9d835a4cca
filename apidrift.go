// Package apidrift reconciles API descriptions extracted from documentation
// with those extracted from source code. It aligns records by identity,
// classifies the discrepancies, and produces a merged set that a report
// renderer presents with inline warnings.
//
// Basic usage:
//
//	engine, err := apidrift.New(apidrift.WithMode(reconciler.ModeRuleBased))
//	if err != nil {
//		return err
//	}
//	set, err := engine.Reconcile(ctx, pages, files)
//	if err != nil {
//		return err
//	}
//	out, err := engine.Report(set, report.StyleAnnotatedMarkdown)
package apidrift

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agentstation/apidrift/pkg/conflicts"
	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/identity"
	"github.com/agentstation/apidrift/pkg/logging"
	"github.com/agentstation/apidrift/pkg/normalizer"
	"github.com/agentstation/apidrift/pkg/reconciler"
	"github.com/agentstation/apidrift/pkg/records"
	"github.com/agentstation/apidrift/pkg/report"
)

// Engine runs the reconciliation pipeline. It keeps no state between runs;
// every call returns a set the caller owns.
type Engine interface {
	// Reconcile normalizes doc pages and code files, matches them by
	// identity, classifies conflicts and merges the result.
	Reconcile(ctx context.Context, pages [][]records.RawDocEntry, files [][]records.RawCodeSymbol) (*reconciler.MergedSet, error)

	// Report renders a merged set in the given style.
	Report(set *reconciler.MergedSet, style report.Style) (string, error)

	// OnConflict registers a callback for every conflict found
	OnConflict(ConflictHook)

	// OnFallback registers a callback for entries resolved by rule fallback
	OnFallback(FallbackHook)

	// OnComplete registers a callback for finished runs
	OnComplete(CompleteHook)
}

var _ Engine = (*engine)(nil)

type engine struct {
	*hooks
	config     *config
	normalizer *normalizer.Normalizer
	classifier *conflicts.Classifier
	reconciler reconciler.Reconciler
}

// New creates an Engine with the given options.
func New(opts ...Option) (Engine, error) {
	cfg, err := defaultConfig().apply(opts...)
	if err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	n, err := normalizer.New(cfg.normalizerOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating normalizer: %w", err)
	}
	r, err := reconciler.New(cfg.reconcilerOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating reconciler: %w", err)
	}
	// Fail at construction rather than mid-run when the mode can't be served.
	if _, err := r.Resolver(cfg.mode); err != nil {
		return nil, err
	}

	return &engine{
		hooks:      newHooks(),
		config:     cfg,
		normalizer: n,
		classifier: &conflicts.Classifier{Rules: cfg.rules},
		reconciler: r,
	}, nil
}

// Reconcile runs the pipeline once with the given options.
func Reconcile(ctx context.Context, pages [][]records.RawDocEntry, files [][]records.RawCodeSymbol, opts ...Option) (*reconciler.MergedSet, error) {
	e, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return e.Reconcile(ctx, pages, files)
}

// Reconcile implements Engine.
func (e *engine) Reconcile(ctx context.Context, pages [][]records.RawDocEntry, files [][]records.RawCodeSymbol) (*reconciler.MergedSet, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}
	if e.config.logger != nil {
		ctx = logging.WithLogger(ctx, e.config.logger)
	}
	// An engine logger drops fields of the caller's logger, so a caller
	// supplied run id is tagged again.
	switch id := logging.RunID(ctx); {
	case id == "":
		ctx = logging.WithRunID(ctx, uuid.NewString())
	case e.config.logger != nil:
		ctx = logging.WithRunID(ctx, id)
	}
	ctx = logging.WithMode(ctx, e.config.mode.String())
	if e.config.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.timeout)
		defer cancel()
	}

	// Step 1: Reject empty input
	if count(pages) == 0 && count(files) == 0 {
		return nil, errors.ErrNoInput
	}

	// Step 2: Normalize pages and files in parallel
	normalized, err := e.normalize(logging.WithStage(ctx, "normalize"), pages, files)
	if err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx)
	logger.Info().
		Int("total", normalized.Stats.Total).
		Int("emitted", normalized.Stats.Emitted).
		Int("skipped", normalized.Stats.Skipped).
		Int("partial", normalized.Stats.Partial).
		Msg("normalized inputs")

	// Step 3: Match records by identity
	matched, err := identity.MatchWithOptions(normalized.Docs(), normalized.Code(), e.matchOptions()...)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Int("groups", len(matched.Groups)).
		Int("excluded", len(matched.Excluded)).
		Msg("matched records")

	// Step 4: Classify conflicts per group
	cs := e.classifier.ClassifyAll(matched.Groups)

	// Step 5: Merge
	set, err := e.reconciler.Merge(logging.WithStage(ctx, "merge"), matched.Groups, cs, e.config.mode)
	if err != nil {
		return nil, err
	}

	// Step 6: Notify hooks
	logger.Info().
		Int("entries", len(set.Entries)).
		Int("conflicts", set.Summary.Total).
		Int("high", set.Summary.Count(conflicts.SeverityHigh)).
		Msg("reconciliation complete")
	e.trigger(set)

	return set, nil
}

func (e *engine) matchOptions() []identity.Option {
	opts := []identity.Option{identity.WithFallback(e.config.fallback)}
	if len(e.config.exclusions) > 0 {
		opts = append(opts, identity.WithExclusions(e.config.exclusions...))
	}
	return opts
}

// Report implements Engine.
func (e *engine) Report(set *reconciler.MergedSet, style report.Style) (string, error) {
	return report.Format(set, style)
}

func count[T any](groups [][]T) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}

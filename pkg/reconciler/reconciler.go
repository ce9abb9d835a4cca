// Package reconciler merges matched documentation and code records into one
// MergedSet. Each group gets a chosen record, the other side of its best
// pair as alternate, its conflicts and a resolution describing the choice.
package reconciler

import (
	"context"
	"time"

	"github.com/agentstation/apidrift/pkg/conflicts"
	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/identity"
	"github.com/agentstation/apidrift/pkg/logging"
	"github.com/agentstation/apidrift/pkg/provenance"
)

// Reconciler merges groups and their conflicts.
type Reconciler interface {
	// Merge resolves every group in the given mode. cs[i] holds the
	// conflicts of groups[i]; a nil cs classifies groups with the default
	// classifier.
	Merge(ctx context.Context, groups []identity.Group, cs [][]conflicts.Conflict, mode Mode) (*MergedSet, error)

	// Resolver returns the resolver used for a mode.
	Resolver(mode Mode) (Resolver, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	options *options
	rules   *RuleBasedResolver
	ai      *AIAssistedResolver
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	r := &reconciler{
		options: options,
		rules:   NewRuleBasedResolver(options.authorities),
	}
	if options.generator != nil {
		r.ai = newAIAssistedResolver(options.generator, options)
	}
	return r, nil
}

// Merge resolves groups with a reconciler built from opts.
func Merge(ctx context.Context, groups []identity.Group, cs [][]conflicts.Conflict, mode Mode, opts ...Option) (*MergedSet, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return r.Merge(ctx, groups, cs, mode)
}

// Resolver returns the resolver for mode.
func (r *reconciler) Resolver(mode Mode) (Resolver, error) {
	switch mode {
	case ModeRuleBased:
		return r.rules, nil
	case ModeAIAssisted:
		if r.ai == nil {
			return nil, &errors.ConfigError{Component: "reconciler", Message: "ai_assisted mode requires a text generator", Err: errors.ErrAPIKeyRequired}
		}
		return r.ai, nil
	default:
		return nil, errors.NewValidationError("mode", mode, "must be rule_based or ai_assisted")
	}
}

// Merge performs reconciliation in clear steps.
func (r *reconciler) Merge(ctx context.Context, groups []identity.Group, cs [][]conflicts.Conflict, mode Mode) (*MergedSet, error) {
	ctx = logging.WithMode(logging.WithStage(ctx, "merge"), mode.String())
	logger := logging.FromContext(ctx)
	start := time.Now()

	// Step 1: Pick the resolver and align conflicts with groups
	resolver, err := r.Resolver(mode)
	if err != nil {
		return nil, err
	}
	if cs == nil {
		cs = conflicts.ClassifyAll(groups)
	}
	if len(cs) != len(groups) {
		return nil, errors.NewValidationError("conflicts", len(cs), "must have one conflict list per group")
	}

	// Step 2: Resolve every group
	decisions, err := resolver.Resolve(ctx, groups, cs)
	if err != nil {
		return nil, err
	}
	if len(decisions) != len(groups) {
		return nil, errors.NewInvariantError("merge", "one decision per group", len(groups), len(decisions))
	}

	// Step 3: Build entries and record provenance
	tracker := provenance.NewTracker(r.options.tracking)
	entries := make([]Entry, len(groups))
	for i, g := range groups {
		d := decisions[i]
		entries[i] = Entry{
			Identity:   g.Identity,
			MatchedBy:  g.MatchedBy,
			Chosen:     d.Chosen,
			Alternate:  d.Alternate,
			Conflicts:  d.Conflicts,
			Resolution: d.Resolution,
		}
		tracker.Track(g.Identity, d.Resolution)
	}

	// Step 4: Summarize and check
	set := &MergedSet{
		Entries:    entries,
		Summary:    Summarize(entries),
		Provenance: tracker.Map(),
	}
	if err := set.Check(); err != nil {
		return nil, err
	}

	stats := provenance.Summarize(set.Provenance)
	logger.Debug().
		Int("entries", len(entries)).
		Int("conflicts", set.Summary.Total).
		Int("fallbacks", stats.Fallbacks).
		Dur("duration", time.Since(start)).
		Msg("merge complete")
	return set, nil
}

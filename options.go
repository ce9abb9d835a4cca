package apidrift

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/apidrift/pkg/authority"
	"github.com/agentstation/apidrift/pkg/cache"
	"github.com/agentstation/apidrift/pkg/conflicts"
	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/normalizer"
	"github.com/agentstation/apidrift/pkg/reconciler"
)

// DefaultWorkers bounds normalization concurrency when WithWorkers is unset.
const DefaultWorkers = 8

// Option is a function that configures an Engine.
type Option func(*config) error

type config struct {
	mode       reconciler.Mode
	workers    int
	timeout    time.Duration
	cache      cache.Cache
	exclusions []string
	fallback   bool
	rules      *conflicts.Rules
	logger     *zerolog.Logger

	normalizerOpts []normalizer.Option
	reconcilerOpts []reconciler.Option
}

func defaultConfig() *config {
	return &config{
		mode:     reconciler.ModeRuleBased,
		workers:  DefaultWorkers,
		fallback: true,
	}
}

func (c *config) apply(opts ...Option) (*config, error) {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithMode selects the merge resolver.
func WithMode(mode reconciler.Mode) Option {
	return func(c *config) error {
		if !mode.Valid() {
			return errors.NewValidationError("mode", mode, "unknown merge mode")
		}
		c.mode = mode
		return nil
	}
}

// WithWorkers bounds how many pages and files are normalized at once.
func WithWorkers(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return errors.NewValidationError("workers", n, "must be at least 1")
		}
		c.workers = n
		return nil
	}
}

// WithTimeout bounds a whole Reconcile call. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return errors.NewValidationError("timeout", d, "must not be negative")
		}
		c.timeout = d
		return nil
	}
}

// WithCache reuses normalization results across runs. The caller owns the
// cache and is responsible for closing and evicting it.
func WithCache(store cache.Cache) Option {
	return func(c *config) error {
		c.cache = store
		return nil
	}
}

// WithExclusions drops identities matching any glob or regex pattern before
// matching.
func WithExclusions(patterns ...string) Option {
	return func(c *config) error {
		c.exclusions = append(c.exclusions, patterns...)
		return nil
	}
}

// WithFallbackMatching enables or disables normalized-name matching.
func WithFallbackMatching(enabled bool) Option {
	return func(c *config) error {
		c.fallback = enabled
		return nil
	}
}

// WithRules overrides conflict severities or ignores kinds.
func WithRules(rules *conflicts.Rules) Option {
	return func(c *config) error {
		c.rules = rules
		return nil
	}
}

// WithSeverityOverrides parses `kind -> severity|ignore` pairs into rules.
func WithSeverityOverrides(overrides map[string]string) Option {
	return func(c *config) error {
		rules, err := conflicts.ParseRules(overrides)
		if err != nil {
			return err
		}
		c.rules = rules
		return nil
	}
}

// WithLogger attaches a logger to every Reconcile context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithGenerator sets the text-generation collaborator used in ai_assisted mode.
func WithGenerator(gen reconciler.Generator) Option {
	return func(c *config) error {
		c.reconcilerOpts = append(c.reconcilerOpts, reconciler.WithGenerator(gen))
		return nil
	}
}

// WithAuthorities replaces the rule-based precedence table.
func WithAuthorities(a authority.Authority) Option {
	return func(c *config) error {
		c.reconcilerOpts = append(c.reconcilerOpts, reconciler.WithAuthorities(a))
		return nil
	}
}

// WithProvenance records why each entry's record was chosen.
func WithProvenance(enabled bool) Option {
	return func(c *config) error {
		c.reconcilerOpts = append(c.reconcilerOpts, reconciler.WithProvenance(enabled))
		return nil
	}
}

// WithNormalizerOptions passes options through to the normalizer.
func WithNormalizerOptions(opts ...normalizer.Option) Option {
	return func(c *config) error {
		c.normalizerOpts = append(c.normalizerOpts, opts...)
		return nil
	}
}

// WithReconcilerOptions passes options through to the merger.
func WithReconcilerOptions(opts ...reconciler.Option) Option {
	return func(c *config) error {
		c.reconcilerOpts = append(c.reconcilerOpts, opts...)
		return nil
	}
}

// ModeOf reports the merge mode opts select, if any of them sets one.
func ModeOf(opts ...Option) (reconciler.Mode, bool) {
	c := &config{}
	for _, opt := range opts {
		_ = opt(c)
	}
	return c.mode, c.mode != ""
}

package reconciler

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/apidrift/pkg/authority"
	"github.com/agentstation/apidrift/pkg/errors"
)

// Defaults for the ai-assisted resolver.
const (
	DefaultConcurrency      = 4
	DefaultRequestTimeout   = 30 * time.Second
	DefaultMaxResponseBytes = 64 << 10
)

// Options configures a reconciler.
type options struct {
	authorities      authority.Authority
	tracking         bool
	generator        Generator
	concurrency      int
	timeout          time.Duration
	limiter          *rate.Limiter
	maxResponseBytes int
}

func defaultOptions() *options {
	return &options{
		authorities:      authority.New(),
		tracking:         true,
		concurrency:      DefaultConcurrency,
		timeout:          DefaultRequestTimeout,
		maxResponseBytes: DefaultMaxResponseBytes,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithAuthorities sets the origin precedence used by rule-based resolution.
func WithAuthorities(authorities authority.Authority) Option {
	return func(o *options) error {
		if authorities == nil {
			return &errors.ValidationError{
				Field:   "authorities",
				Message: "cannot be nil",
			}
		}
		o.authorities = authorities
		return nil
	}
}

// WithProvenance enables resolution tracking.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.tracking = enabled
		return nil
	}
}

// WithGenerator sets the text-generation collaborator for ai-assisted mode.
func WithGenerator(gen Generator) Option {
	return func(o *options) error {
		o.generator = gen
		return nil
	}
}

// WithConcurrency bounds the number of in-flight AI requests.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewValidationError("concurrency", n, "must be at least 1")
		}
		o.concurrency = n
		return nil
	}
}

// WithRequestTimeout sets the per-request AI timeout. Zero disables it.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.NewValidationError("timeout", d, "cannot be negative")
		}
		o.timeout = d
		return nil
	}
}

// WithRateLimiter throttles AI requests.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(o *options) error {
		o.limiter = limiter
		return nil
	}
}

// WithMaxResponseBytes bounds the size of an accepted AI response.
func WithMaxResponseBytes(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewValidationError("max_response_bytes", n, "must be positive")
		}
		o.maxResponseBytes = n
		return nil
	}
}

// WithRequestsPerSecond throttles AI requests to rps. Zero disables throttling.
func WithRequestsPerSecond(rps float64) Option {
	return func(o *options) error {
		if rps < 0 {
			return errors.NewValidationError("requests_per_second", rps, "cannot be negative")
		}
		o.limiter = limiterFor(rps)
		return nil
	}
}

// Package ai provides the text-generation collaborators used by the
// ai-assisted merge. Every backend returns a JSON document as text; callers
// validate it.
package ai

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/apidrift/pkg/errors"
)

// Generator produces a JSON response for a system instruction and a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, system, prompt string) (string, error)

// GenerateJSON calls f.
func (f GeneratorFunc) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

// Provider names a text-generation backend.
type Provider string

// Supported providers.
const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Providers returns the supported providers.
func Providers() []Provider {
	return []Provider{ProviderGemini, ProviderOpenAI}
}

// Default models per provider.
const (
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// Config selects and configures a backend.
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
	BaseURL  string  // OpenAI-compatible endpoint override
	RPS      float64 // Requests per second; zero means unlimited
}

// New creates the Generator named by cfg.Provider, wrapped in a rate
// limiter when cfg.RPS is positive.
func New(ctx context.Context, cfg Config) (Generator, error) {
	var (
		gen Generator
		err error
	)
	switch cfg.Provider {
	case ProviderGemini, "":
		gen, err = NewGemini(ctx, cfg.APIKey, cfg.Model)
	case ProviderOpenAI:
		gen, err = NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, errors.NewValidationError("provider", cfg.Provider, "unknown ai provider (want gemini or openai)")
	}
	if err != nil {
		return nil, err
	}
	if cfg.RPS > 0 {
		gen = WithRateLimit(gen, rate.NewLimiter(rate.Limit(cfg.RPS), 1))
	}
	return gen, nil
}

type limited struct {
	next    Generator
	limiter *rate.Limiter
}

// WithRateLimit returns a Generator that waits on limiter before each call.
// A nil limiter returns gen unchanged.
func WithRateLimit(gen Generator, limiter *rate.Limiter) Generator {
	if limiter == nil {
		return gen
	}
	return &limited{next: gen, limiter: limiter}
}

func (l *limited) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", errors.NewTimeoutError("rate limit wait", "", err.Error())
	}
	return l.next.GenerateJSON(ctx, system, prompt)
}

type timed struct {
	next    Generator
	timeout time.Duration
}

// WithTimeout bounds every call to gen. A non-positive timeout returns gen
// unchanged. A call cut off by the deadline returns a TimeoutError.
func WithTimeout(gen Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		return gen
	}
	return &timed{next: gen, timeout: timeout}
}

func (t *timed) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	out, err := t.next.GenerateJSON(ctx, system, prompt)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return "", errors.NewTimeoutError("generate", t.timeout.String(), err.Error())
	}
	return out, err
}

// CleanJSON strips a markdown code fence some models wrap around JSON.
func CleanJSON(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

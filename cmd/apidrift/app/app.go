// Package app provides the application context and dependency management
// for the apidrift CLI. It centralizes configuration, logging, and engine
// construction for the commands.
package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/apidrift"
	"github.com/agentstation/apidrift/internal/ai"
	"github.com/agentstation/apidrift/internal/appcontext"
	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/reconciler"
)

// App represents the apidrift application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// generator overrides the configured AI backend (tests)
	generator reconciler.Generator
}

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the environment that can
// be customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "failed to load config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Output
}

// Settings returns the configured defaults for commands.
func (a *App) Settings() appcontext.Settings {
	return appcontext.Settings{
		Mode:           a.config.Mode,
		Report:         a.config.Report,
		CachePath:      a.config.CachePath,
		ProvenancePath: a.config.ProvenancePath,
		Workers:        a.config.Workers,
		RequestTimeout: a.config.RequestTimeout,
		Exclude:        a.config.Exclude,
		Severity:       a.config.SeverityOverrides,
	}
}

// Engine builds an engine from configuration followed by opts.
// The AI backend is only created for ai_assisted mode.
func (a *App) Engine(ctx context.Context, opts ...apidrift.Option) (apidrift.Engine, error) {
	base, err := a.engineOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return apidrift.New(append(base, opts...)...)
}

func (a *App) engineOptions(ctx context.Context, overrides []apidrift.Option) ([]apidrift.Option, error) {
	mode, err := reconciler.ParseMode(a.config.Mode)
	if err != nil {
		return nil, err
	}

	opts := []apidrift.Option{
		apidrift.WithMode(mode),
		apidrift.WithLogger(a.logger),
		apidrift.WithExclusions(a.config.Exclude...),
		apidrift.WithSeverityOverrides(a.config.SeverityOverrides),
		apidrift.WithReconcilerOptions(
			reconciler.WithRequestTimeout(a.config.RequestTimeout),
			reconciler.WithRequestsPerSecond(a.config.RequestsPerSecond),
		),
	}
	if a.config.Workers > 0 {
		opts = append(opts, apidrift.WithWorkers(a.config.Workers))
	}
	if a.config.MaxConcurrency > 0 {
		opts = append(opts, apidrift.WithReconcilerOptions(reconciler.WithConcurrency(a.config.MaxConcurrency)))
	}

	// A command may switch the mode, so decide on the effective one.
	if effectiveMode(mode, overrides) != reconciler.ModeAIAssisted {
		return opts, nil
	}
	gen := a.generator
	if gen == nil {
		gen, err = ai.New(ctx, ai.Config{
			Provider: ai.Provider(strings.ToLower(a.config.AIProvider)),
			Model:    a.config.AIModel,
			APIKey:   a.config.APIKey(),
			BaseURL:  a.config.OpenAIBaseURL,
		})
		if err != nil {
			return nil, err
		}
	}
	a.logger.Debug().Str("provider", a.config.AIProvider).Msg("text-generation backend ready")
	return append(opts, apidrift.WithGenerator(gen)), nil
}

// effectiveMode applies overrides to a scratch engine config to find the
// mode they select.
func effectiveMode(mode reconciler.Mode, overrides []apidrift.Option) reconciler.Mode {
	if m, ok := apidrift.ModeOf(overrides...); ok {
		return m
	}
	return mode
}

// Shutdown performs graceful shutdown of the application.
func (a *App) Shutdown(_ context.Context) error {
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithGenerator sets the text-generation backend (useful for testing).
func WithGenerator(gen reconciler.Generator) Option {
	return func(a *App) error {
		a.generator = gen
		return nil
	}
}

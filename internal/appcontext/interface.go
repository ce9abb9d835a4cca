// Package appcontext provides the shared application context interface
// used by all commands. This eliminates interface duplication across
// command packages and provides a single source of truth for app dependencies.
package appcontext

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/apidrift"
)

// Settings are the configured defaults commands fall back to when a flag
// is not given.
type Settings struct {
	Mode           string
	Report         string
	CachePath      string
	ProvenancePath string
	Workers        int
	RequestTimeout time.Duration
	Exclude        []string
	Severity       map[string]string
}

// Interface defines the application context interface that commands need.
// The App struct from cmd/apidrift/app automatically implements this interface,
// providing dependency injection for commands while maintaining testability.
//
// Commands should accept this interface rather than the concrete App type,
// allowing for easier testing with mock implementations.
type Interface interface {
	// Engine builds an engine from configuration. Options are applied after
	// the configured ones, so command flags win. In ai_assisted mode the
	// configured text-generation backend is created here.
	Engine(ctx context.Context, opts ...apidrift.Option) (apidrift.Engine, error)

	// Settings returns the configured defaults.
	Settings() Settings

	// Logger returns the configured logger instance.
	// Commands should use this for all logging operations.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

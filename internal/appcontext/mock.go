package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/apidrift"
	"github.com/agentstation/apidrift/pkg/logging"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	EngineFunc       func(context.Context, ...apidrift.Option) (apidrift.Engine, error)
	SettingsFunc     func() Settings
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
}

// Engine returns an engine using the mock function or apidrift.New.
func (m *Mock) Engine(ctx context.Context, opts ...apidrift.Option) (apidrift.Engine, error) {
	if m.EngineFunc != nil {
		return m.EngineFunc(ctx, opts...)
	}
	return apidrift.New(opts...)
}

// Settings returns settings using the mock function or rule-based JSON defaults.
func (m *Mock) Settings() Settings {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	return Settings{Mode: "rule_based", Report: "json", Workers: apidrift.DefaultWorkers}
}

// Logger returns a logger using the mock function or a nop logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	return logging.NewNopLogger()
}

// OutputFormat returns the format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}

// Commit returns "test".
func (m *Mock) Commit() string { return "test" }

// Date returns "test".
func (m *Mock) Date() string { return "test" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

package logging_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/apidrift/pkg/logging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestNewLoggerFromConfigWritesFile(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	path := filepath.Join(t.TempDir(), "apidrift.log")
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "warn",
		Format: "json",
		Output: path,
		Fields: map[string]any{"component": "test"},
	})
	logger.Info().Msg("dropped")
	logger.Warn().Msg("kept")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "kept")
	assert.Contains(t, string(content), `"component":"test"`)
	assert.NotContains(t, string(content), "dropped")
}

func TestContextFields(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithStage(ctx, "merge")
	ctx = logging.WithMode(ctx, "ai_assisted")
	ctx = logging.WithIdentity(ctx, "Node2D.rotate")
	ctx = logging.WithSource(ctx, "docs/node2d.html")
	ctx = logging.WithError(ctx, errors.New("boom"))
	ctx = logging.WithFields(ctx, map[string]any{"attempt": 2, "elapsed": time.Second})

	logging.FromContext(ctx).Warn().Msg("fallback")

	testLogger.AssertContains(t, `"stage":"merge"`)
	testLogger.AssertContains(t, `"mode":"ai_assisted"`)
	testLogger.AssertContains(t, `"identity":"Node2D.rotate"`)
	testLogger.AssertContains(t, `"source":"docs/node2d.html"`)
	testLogger.AssertContains(t, `"error":"boom"`)
	testLogger.AssertContains(t, `"attempt":2`)
	testLogger.AssertCount(t, 1)
}

func TestRunID(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithRunID(ctx, "run-42")

	assert.Equal(t, "run-42", logging.RunID(ctx))
	assert.Empty(t, logging.RunID(context.Background()))

	logging.FromContext(ctx).Info().Msg("started")
	testLogger.AssertContains(t, "run-42")
}

func TestFromContextDefaults(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Same(t, logging.Default(), logging.FromContext(logging.WithLogger(context.Background(), nil)))
}

func TestWithErrorNil(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, logging.WithError(ctx, nil))
}

func TestCaptureLoggingForTest(t *testing.T) {
	captured := logging.CaptureLoggingForTest(t)
	logging.Info().Str("identity", "a").Msg("one")
	logging.Warn().Str("identity", "b").Msg("two")

	assert.Equal(t, 2, captured.Count())
	assert.Equal(t, 1, captured.CountContaining(`"identity":"b"`))
	captured.Clear()
	captured.AssertCount(t, 0)
}

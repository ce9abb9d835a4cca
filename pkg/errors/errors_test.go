package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/apidrift/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "record",
			ID:       "Node2D.rotate",
		}
		assert.Equal(t, "record with ID Node2D.rotate not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("page", "https://docs.example.com")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "identity",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field identity: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "response too large"}
		assert.Equal(t, "validation failed: response too large", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestFormatError(t *testing.T) {
	err := pkgerrors.NewFormatError("html", "json", "annotated_markdown")
	assert.Contains(t, err.Error(), `"html"`)
	assert.Contains(t, err.Error(), "annotated_markdown")
	assert.True(t, pkgerrors.IsUnsupportedFormat(err))
	assert.True(t, pkgerrors.IsUnsupportedFormat(fmt.Errorf("report: %w", err)))
}

func TestInvariantError(t *testing.T) {
	err := pkgerrors.NewInvariantError("matcher", "doc record conservation", 3, 2)
	assert.Equal(t, `matcher: invariant "doc record conservation" violated (expected 3, got 2)`, err.Error())
	assert.True(t, pkgerrors.IsInvariant(err))
	assert.False(t, pkgerrors.IsValidationError(err))

	var inv *pkgerrors.InvariantError
	require.True(t, errors.As(fmt.Errorf("merge: %w", err), &inv))
	assert.Equal(t, "matcher", inv.Stage)
}

func TestResolverError(t *testing.T) {
	t.Run("wraps cause", func(t *testing.T) {
		cause := pkgerrors.NewTimeoutError("generate", "5s", "deadline exceeded")
		err := pkgerrors.NewResolverError("ai_assisted", "Node2D.move_local_x", "collaborator call failed", cause)
		assert.Contains(t, err.Error(), "ai_assisted")
		assert.Contains(t, err.Error(), "Node2D.move_local_x")
		assert.True(t, pkgerrors.IsTimeout(err))
	})

	t.Run("without cause", func(t *testing.T) {
		err := pkgerrors.NewResolverError("ai_assisted", "x", "identity not in group", nil)
		assert.Equal(t, "resolver ai_assisted failed for x: identity not in group", err.Error())
		assert.Nil(t, errors.Unwrap(err))
	})
}

func TestAPIError(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		err := pkgerrors.NewAPIError("openai", 429, "rate limit exceeded")
		assert.Contains(t, err.Error(), "429")
		assert.True(t, pkgerrors.IsRateLimited(err))
	})

	t.Run("server error is not rate limited", func(t *testing.T) {
		err := pkgerrors.NewAPIError("gemini", 500, "internal")
		assert.False(t, pkgerrors.IsRateLimited(err))
	})

	t.Run("wrap keeps cause", func(t *testing.T) {
		base := errors.New("connection reset")
		err := pkgerrors.WrapAPI("gemini", 0, base)
		assert.Equal(t, "API error from gemini: connection reset", err.Error())
		assert.True(t, errors.Is(err, base))
	})
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name string
		err  *pkgerrors.ParseError
		want string
	}{
		{
			name: "file and line",
			err:  &pkgerrors.ParseError{Format: "yaml", File: "docs.yaml", Line: 4, Message: "bad indent"},
			want: "parse error in yaml at docs.yaml:4: bad indent",
		},
		{
			name: "file only",
			err:  &pkgerrors.ParseError{Format: "json", File: "code.json", Message: "unexpected EOF"},
			want: "parse error in json file code.json: unexpected EOF",
		},
		{
			name: "no file",
			err:  &pkgerrors.ParseError{Format: "python", Message: "no tree"},
			want: "python parse error: no tree",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
	assert.NoError(t, pkgerrors.WrapParse("json", "x", nil))
	assert.NoError(t, pkgerrors.WrapValidation("x", nil))
	assert.NoError(t, pkgerrors.WrapAPI("x", 0, nil))
}

func TestIOError(t *testing.T) {
	base := errors.New("permission denied")
	err := pkgerrors.WrapIO("open", "/tmp/cache.db", base)
	assert.Equal(t, "IO error during open of /tmp/cache.db: permission denied", err.Error())
	assert.True(t, errors.Is(err, base))
}

func TestSentinelHelpers(t *testing.T) {
	assert.True(t, pkgerrors.IsNoInput(fmt.Errorf("reconcile: %w", pkgerrors.ErrNoInput)))
	assert.True(t, pkgerrors.IsCanceled(pkgerrors.ErrCanceled))
	assert.False(t, pkgerrors.IsNoInput(pkgerrors.ErrInvariant))
}

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/veritas/internal/errors"
)

func TestWrap(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.NoError(t, errors.Wrap(nil, "context"))
	})

	t.Run("preserves error chain", func(t *testing.T) {
		wrapped := errors.Wrap(errors.ErrCyclicDependency, "registry validation")
		require.Error(t, wrapped)
		assert.ErrorIs(t, wrapped, errors.ErrCyclicDependency)
		assert.Contains(t, wrapped.Error(), "registry validation")
	})
}

func TestWrapf(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.NoError(t, errors.Wrapf(nil, "step %s", "build"))
	})

	t.Run("interpolates and preserves chain", func(t *testing.T) {
		wrapped := errors.Wrapf(errors.ErrCommandTimeout, "step %s", "unit_tests")
		require.Error(t, wrapped)
		assert.ErrorIs(t, wrapped, errors.ErrCommandTimeout)
		assert.Contains(t, wrapped.Error(), "step unit_tests")
	})
}

func TestUserMessage(t *testing.T) {
	t.Run("nil error returns empty", func(t *testing.T) {
		assert.Empty(t, errors.UserMessage(nil))
	})

	t.Run("known sentinel gets friendly message", func(t *testing.T) {
		msg := errors.UserMessage(errors.ErrCyclicDependency)
		assert.Contains(t, msg, "cycle")
	})

	t.Run("wrapped sentinel still resolves", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", errors.ErrSpawnFailed)
		msg := errors.UserMessage(wrapped)
		assert.Contains(t, msg, "could not be started")
	})

	t.Run("unknown error falls back to its message", func(t *testing.T) {
		err := stderrors.New("something unexpected")
		assert.Equal(t, "something unexpected", errors.UserMessage(err))
	})
}

func TestActionable(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		msg, action := errors.Actionable(nil)
		assert.Empty(t, msg)
		assert.Empty(t, action)
	})

	t.Run("known sentinel includes action", func(t *testing.T) {
		msg, action := errors.Actionable(errors.ErrReportWrite)
		assert.NotEmpty(t, msg)
		assert.Contains(t, action, "--report")
	})
}

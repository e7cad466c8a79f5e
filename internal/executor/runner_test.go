//go:build !windows

package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/veritas/internal/errors"
	"github.com/mrz1836/veritas/internal/executor"
)

func TestDefaultCommandRunner_Run(t *testing.T) {
	r := &executor.DefaultCommandRunner{}

	t.Run("captures stdout and stderr", func(t *testing.T) {
		out, err := r.Run(context.Background(), t.TempDir(), "echo hello; echo oops >&2")
		require.NoError(t, err)
		assert.Equal(t, 0, out.ExitCode)
		assert.Equal(t, "hello\n", out.Stdout)
		assert.Equal(t, "oops\n", out.Stderr)
	})

	t.Run("reports non-zero exit code without error", func(t *testing.T) {
		out, err := r.Run(context.Background(), t.TempDir(), "exit 42")
		require.NoError(t, err)
		assert.Equal(t, 42, out.ExitCode)
	})

	t.Run("spawn failure when workdir is missing", func(t *testing.T) {
		_, err := r.Run(context.Background(), "/definitely/not/a/dir", "true")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrSpawnFailed)
	})

	t.Run("cancellation kills the process group", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := r.Run(ctx, t.TempDir(), "sleep 30")
		elapsed := time.Since(start)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, elapsed, 5*time.Second, "the sleep must not run to completion")
	})
}

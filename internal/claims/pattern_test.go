package claims_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/veritas/internal/claims"
	"github.com/mrz1836/veritas/internal/errors"
)

func TestPatternExtractor_Extract(t *testing.T) {
	e := claims.NewPatternExtractor()

	t.Run("empty narrative yields no claims", func(t *testing.T) {
		got, err := e.Extract(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("matches case-insensitively", func(t *testing.T) {
		got, err := e.Extract(context.Background(), "All Tests Pass and the code COMPILES SUCCESSFULLY.")
		require.NoError(t, err)
		require.Len(t, got, 2)
		// Ordered by scope.
		assert.Equal(t, "build", got[0].Scope)
		assert.Equal(t, "tests", got[1].Scope)
	})

	t.Run("keeps the highest-confidence phrasing per scope", func(t *testing.T) {
		got, err := e.Extract(context.Background(), "tests pass; in fact all tests pass")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "tests", got[0].Scope)
		assert.InDelta(t, 0.95, got[0].Confidence, 0.001)
	})

	t.Run("vague implementation claims carry lower confidence", func(t *testing.T) {
		got, err := e.Extract(context.Background(), "The feature is implemented and production ready.")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "implementation", got[0].Scope)
		assert.Less(t, got[0].Confidence, 0.7)
	})

	t.Run("deterministic across invocations", func(t *testing.T) {
		narrative := "tests pass, lint passes, docs build, builds successfully"
		first, err := e.Extract(context.Background(), narrative)
		require.NoError(t, err)
		second, err := e.Extract(context.Background(), narrative)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestLoadNarrative(t *testing.T) {
	t.Run("reads an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "output.md")
		require.NoError(t, os.WriteFile(path, []byte("tests pass"), 0o600))

		text, err := claims.LoadNarrative(path)
		require.NoError(t, err)
		assert.Equal(t, "tests pass", text)
	})

	t.Run("missing file maps to sentinel", func(t *testing.T) {
		_, err := claims.LoadNarrative(filepath.Join(t.TempDir(), "nope.md"))
		assert.ErrorIs(t, err, errors.ErrNarrativeNotFound)
	})
}

package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupProject writes a project directory with the given config content.
func setupProject(t *testing.T, configYAML string) string {
	t.Helper()
	root := t.TempDir()
	if configYAML != "" {
		dir := filepath.Join(root, ".veritas")
		require.NoError(t, os.MkdirAll(dir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o600))
	}
	return root
}

// writeNarrative writes an LLM narrative file and returns its path.
func writeNarrative(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "response.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// runCLI executes the root command with an isolated home directory.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VERITAS_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})
	cmd.SetArgs(args)
	cmd.SetOut(os.Stderr)
	return cmd.ExecuteContext(context.Background())
}

// Package main provides the entry point for the veritas CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/veritas/internal/cli"
)

// Build information set via ldflags.
var (
	version = "" //nolint:gochecknoglobals // set at build time
	commit  = "" //nolint:gochecknoglobals // set at build time
	date    = "" //nolint:gochecknoglobals // set at build time
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	cli.CloseLogFile()
	os.Exit(cli.ExitCodeForError(err))
}

// Package executor runs verification steps to completion, honoring the
// dependency DAG, per-step timeouts, retry policies, and run cancellation.
//
// SECURITY NOTE: The commands executed by this package come from the step
// registry, which is populated from project configuration
// (.veritas/config.yaml) or the user's global config (~/.veritas/config.yaml).
// These are treated as trusted input, the same trust model as Makefiles, npm
// scripts, or CI configurations. The sh -c invocation is intentional to
// support shell features (pipes, redirects) common in verification commands.
package executor

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"time"

	"github.com/mrz1836/veritas/internal/errors"
)

// RunOutput is what the command runner hands back for one attempt.
type RunOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// CommandRunner defines the interface for executing step commands.
// This allows for testing by injecting mock implementations.
type CommandRunner interface {
	// Run executes a shell command in workDir and returns its output.
	// A command that could not be spawned at all returns an error wrapping
	// errors.ErrSpawnFailed; a command that ran and exited non-zero returns
	// a populated RunOutput and a nil error. Context cancellation kills the
	// command's whole process group before returning.
	Run(ctx context.Context, workDir, command string) (RunOutput, error)
}

// DefaultCommandRunner implements CommandRunner using os/exec.
// Commands run via sh -c in their own process group so that a timeout or
// cancellation kills the command and everything it spawned, not just the
// parent shell.
type DefaultCommandRunner struct{}

// Run executes a shell command using sh -c.
func (r *DefaultCommandRunner) Run(ctx context.Context, workDir, command string) (RunOutput, error) {
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = workDir

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	setProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return RunOutput{Duration: time.Since(start)}, errors.Wrapf(errors.ErrSpawnFailed, "%s: %v", command, err)
	}

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()

	var waitErr error
	select {
	case <-ctx.Done():
		// Kill the whole process group, then reap the child.
		killProcessGroup(cmd)
		<-waitDone
		waitErr = ctx.Err()
	case waitErr = <-waitDone:
	}

	out := RunOutput{
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		Duration: time.Since(start),
	}

	switch {
	case ctx.Err() != nil:
		// Caller classifies timeout vs cancellation from its own contexts.
		out.ExitCode = -1
		return out, ctx.Err()
	case waitErr != nil:
		var exitErr *exec.ExitError
		if stderrors.As(waitErr, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, errors.Wrapf(errors.ErrSpawnFailed, "%s: %v", command, waitErr)
	default:
		out.ExitCode = 0
		return out, nil
	}
}

// Ensure DefaultCommandRunner implements CommandRunner.
var _ CommandRunner = (*DefaultCommandRunner)(nil)

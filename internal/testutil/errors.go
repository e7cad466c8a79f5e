// Package testutil provides testing utilities for veritas.
//
// This package contains mock errors used across test files to simulate
// failure scenarios. It should only be imported by test files (*_test.go).
package testutil

import (
	"fmt"

	"github.com/mrz1836/veritas/internal/errors"
)

// Mock errors for simulating command execution failures in tests.
var (
	// ErrMockSpawn simulates a command that could not be started, e.g. a
	// missing toolchain binary. It wraps ErrSpawnFailed so executor
	// classification treats it like the real thing.
	ErrMockSpawn = fmt.Errorf("%w: mock binary missing", errors.ErrSpawnFailed)

	// ErrMockNetwork simulates a transient network failure (used to exercise
	// retry paths).
	ErrMockNetwork = errors.Wrap(errors.ErrCommandFailed, "mock network unreachable")
)

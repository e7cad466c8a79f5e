// Package errors provides centralized error handling for veritas.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrDuplicateStepID indicates that a step with the same id was already
	// registered in the step registry.
	ErrDuplicateStepID = errors.New("duplicate step id")

	// ErrUnknownDependency indicates that a step declares a dependency on a
	// step id that is not present in the registry.
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrCyclicDependency indicates that the step dependency graph contains
	// a cycle. A registry with a cycle must never start a run.
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrSpawnFailed indicates that a step's command could not be started at
	// all (missing binary, permission denied). Distinguished from a command
	// that started and exited non-zero.
	ErrSpawnFailed = errors.New("command spawn failed")

	// ErrCommandTimeout indicates that a step's command exceeded its timeout
	// and the process group was killed.
	ErrCommandTimeout = errors.New("command timed out")

	// ErrCommandFailed indicates that a step's command exited non-zero after
	// all retry attempts were exhausted.
	ErrCommandFailed = errors.New("command failed")

	// ErrStepNotFound indicates that a referenced step id does not exist in
	// the registry.
	ErrStepNotFound = errors.New("step not found")

	// ErrRunSealed indicates an attempt to mutate a validation run after the
	// report generator has sealed it.
	ErrRunSealed = errors.New("validation run is sealed")

	// ErrReportWrite indicates that the report artifact could not be written.
	// The verdict must still be printed to the console before the invocation
	// aborts with this error.
	ErrReportWrite = errors.New("report write failed")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrConfigNotFound indicates that the configuration file was not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrNarrativeNotFound indicates that the narrative (LLM output) file
	// passed on the command line does not exist.
	ErrNarrativeNotFound = errors.New("narrative file not found")

	// ErrProjectNotFound indicates that the project directory passed on the
	// command line does not exist.
	ErrProjectNotFound = errors.New("project directory not found")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrCommandNotConfigured indicates that a step declares no command, or a
	// mock command was not configured in tests.
	ErrCommandNotConfigured = errors.New("command not configured")

	// ErrRunInProgress indicates that another validation run already holds
	// the project's run lock.
	ErrRunInProgress = errors.New("validation run already in progress")
)

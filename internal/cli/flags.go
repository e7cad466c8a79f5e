// Package cli provides the command-line interface for veritas.
package cli

import (
	stderrors "errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/veritas/internal/errors"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates a fully validated run.
	ExitSuccess = 0
	// ExitValidationFailed indicates the run completed but the verdict was
	// not FULLY_VALIDATED, or an execution error occurred.
	ExitValidationFailed = 1
	// ExitInvalidInput indicates a usage or configuration error.
	ExitInvalidInput = 2
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = "text"
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = "json"
)

// ErrVerdictNotPassing signals that the pipeline ran to completion but the
// final verdict was not FULLY_VALIDATED. It maps to ExitValidationFailed.
var ErrVerdictNotPassing = stderrors.New("validation did not fully pass")

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
}

// AddGlobalFlags adds global flags to a command.
// These flags are available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds global flags to Viper for configuration file and
// environment variable support. The VERITAS_ prefix is used for environment
// variables (e.g., VERITAS_OUTPUT, VERITAS_VERBOSE).
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Use Root().PersistentFlags() to find flags defined on the root command,
	// even when called from a subcommand's PersistentPreRunE.
	rootFlags := cmd.Root().PersistentFlags()

	if err := v.BindPFlag("output", rootFlags.Lookup("output")); err != nil {
		return err
	}
	if err := v.BindPFlag("verbose", rootFlags.Lookup("verbose")); err != nil {
		return err
	}
	if err := v.BindPFlag("quiet", rootFlags.Lookup("quiet")); err != nil {
		return err
	}

	v.SetEnvPrefix("VERITAS")
	v.AutomaticEnv()

	return nil
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is a valid output format.
func IsValidOutputFormat(format string) bool {
	for _, valid := range ValidOutputFormats() {
		if format == valid {
			return true
		}
	}
	return false
}

// configurationErrors map to ExitInvalidInput: the pipeline never started
// because the operator gave veritas something it could not work with.
var configurationErrors = []error{ //nolint:gochecknoglobals // lookup table
	errors.ErrConfigNil,
	errors.ErrConfigInvalid,
	errors.ErrConfigNotFound,
	errors.ErrInvalidOutputFormat,
	errors.ErrDuplicateStepID,
	errors.ErrUnknownDependency,
	errors.ErrCyclicDependency,
	errors.ErrCommandNotConfigured,
	errors.ErrNarrativeNotFound,
	errors.ErrProjectNotFound,
	errors.ErrEmptyValue,
}

// ExitCodeForError returns the appropriate exit code for the given error.
// Returns ExitSuccess (0) for nil errors, ExitInvalidInput (2) for usage and
// configuration errors, and ExitValidationFailed (1) for everything else,
// including a completed run whose verdict was not FULLY_VALIDATED.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	for _, confErr := range configurationErrors {
		if stderrors.Is(err, confErr) {
			return ExitInvalidInput
		}
	}

	// Cobra flag parsing errors (unknown flags, bad arguments) are usage errors.
	if isInvalidInputError(err.Error()) {
		return ExitInvalidInput
	}

	return ExitValidationFailed
}

// isInvalidInputError checks if an error message indicates invalid user input.
// This catches Cobra's built-in flag validation errors.
func isInvalidInputError(errMsg string) bool {
	invalidInputPatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"required flag",
		"unknown command",
	}

	for _, pattern := range invalidInputPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}

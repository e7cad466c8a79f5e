package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their user-facing messages.
// This single source of truth ensures UserMessage and Actionable stay in sync.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Registry configuration
	// ===================
	{
		err: ErrDuplicateStepID,
		info: ErrorInfo{
			Message: "Two steps were declared with the same id.",
			Action:  "Rename one of the duplicate steps in .veritas/config.yaml.",
		},
	},
	{
		err: ErrUnknownDependency,
		info: ErrorInfo{
			Message: "A step depends on a step id that was never declared.",
			Action:  "Fix the depends_on list in .veritas/config.yaml to reference declared steps.",
		},
	},
	{
		err: ErrCyclicDependency,
		info: ErrorInfo{
			Message: "The step dependency graph contains a cycle. No steps were executed.",
			Action:  "Break the cycle in the depends_on declarations and retry.",
		},
	},

	// ===================
	// Step execution
	// ===================
	{
		err: ErrSpawnFailed,
		info: ErrorInfo{
			Message: "A step's command could not be started. The required tool may not be installed.",
			Action:  "Install the missing toolchain binary or adjust the step's command.",
		},
	},
	{
		err: ErrCommandTimeout,
		info: ErrorInfo{
			Message: "A step exceeded its timeout and was terminated.",
			Action:  "Increase the step timeout with --timeout or in the config.",
		},
	},
	{
		err: ErrCommandFailed,
		info: ErrorInfo{
			Message: "A step's command failed after all retry attempts.",
			Action:  "Inspect the step log artifact for the failing output.",
		},
	},

	// ===================
	// Invocation inputs
	// ===================
	{
		err: ErrNarrativeNotFound,
		info: ErrorInfo{
			Message: "The narrative file passed via --llm-output does not exist.",
			Action:  "Check the path passed to --llm-output.",
		},
	},
	{
		err: ErrProjectNotFound,
		info: ErrorInfo{
			Message: "The project directory passed via --project does not exist.",
			Action:  "Check the path passed to --project.",
		},
	},
	{
		err: ErrReportWrite,
		info: ErrorInfo{
			Message: "The report artifact could not be written. The verdict was printed above.",
			Action:  "Check permissions on the report directory or pass --report with a writable path.",
		},
	},
	{
		err: ErrConfigInvalid,
		info: ErrorInfo{
			Message: "The configuration file contains invalid values.",
			Action:  "Run 'veritas init' to regenerate a valid config scaffold.",
		},
	},
	{
		err: ErrConfigNotFound,
		info: ErrorInfo{
			Message: "No configuration file was found; built-in defaults are in effect.",
			Action:  "Run 'veritas init' to create .veritas/config.yaml.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "The requested output format is not supported.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrRunInProgress,
		info: ErrorInfo{
			Message: "Another validation run already holds this project's run lock.",
			Action:  "Wait for the other run to finish, or remove a stale .veritas/run.lock.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
// Built once from errorInfoEntries during package initialization.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

// buildErrorInfoMap creates a map from the errorInfoEntries slice.
// This is called once during package init for O(1) direct lookups.
func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries O(1) direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	// Fast path: O(1) lookup for direct sentinel errors
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	// Slow path: errors.Is() for wrapped errors
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// This function maps sentinel errors to helpful, actionable messages
// that are suitable for display to end users.
//
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that are not recoverable or have no clear action, the action
// string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}

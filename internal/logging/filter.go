// Package logging provides zerolog utilities shared by the CLI, including
// redaction of credentials that can leak into logs through captured step
// output or environment dumps.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue replaces any detected credential in log output.
const RedactedValue = "[REDACTED]"

// secretPatterns match credential formats that commonly appear in build and
// test output: registry tokens, VCS tokens, and generic key=value secrets.
var secretPatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // compiled once, reused everywhere
	// crates.io registry tokens
	regexp.MustCompile(`cio[a-zA-Z0-9]{20,}`),

	// GitHub tokens (ghp_, gho_, ghu_, ghs_, ghr_)
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),

	// OpenAI / Anthropic style API keys
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),

	// Bearer tokens and Authorization headers
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),
	regexp.MustCompile(`(?i)authorization\s*[:=]\s*["']?[a-zA-Z0-9._-]{20,}["']?`),

	// Generic key=value secrets (CARGO_REGISTRY_TOKEN=..., PASSWORD: ...)
	regexp.MustCompile(`(?i)(token|secret|password|passwd|credential|api[_-]?key)\s*[:=]\s*["']?[^\s"']{8,}["']?`),

	// Private key material
	regexp.MustCompile(`-----BEGIN[A-Z ]+PRIVATE KEY-----`),
}

// secretFieldNames are log field names whose values are always redacted,
// matched case-insensitively as substrings.
var secretFieldNames = []string{ //nolint:gochecknoglobals // compiled once, reused everywhere
	"token",
	"secret",
	"password",
	"passwd",
	"credential",
	"api_key",
	"apikey",
	"api-key",
	"authorization",
	"private_key",
	"private-key",
}

// RedactionHook is a zerolog hook that flags events whose message contains
// credential-shaped content. Zerolog does not let hooks rewrite the message,
// so the actual scrubbing happens in FilteringWriter; the hook marks the
// event so flagged entries are easy to audit.
type RedactionHook struct{}

// NewRedactionHook returns a hook suitable for zerolog.Logger.Hook.
func NewRedactionHook() *RedactionHook {
	return &RedactionHook{}
}

// Run implements zerolog.Hook.
func (h *RedactionHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSecret(msg) {
		e.Bool("redacted", true)
	}
}

// ContainsSecret reports whether s matches any known credential pattern.
func ContainsSecret(s string) bool {
	for _, pattern := range secretPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// Scrub replaces every credential match in value with RedactedValue.
func Scrub(value string) string {
	result := value
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSecretFieldName reports whether a log field name indicates a credential.
func IsSecretFieldName(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, name := range secretFieldNames {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

// SafeValue returns the value to log for a field: fully redacted when the
// field name is itself sensitive, otherwise scrubbed of credential matches.
func SafeValue(fieldName, value string) string {
	if IsSecretFieldName(fieldName) {
		return RedactedValue
	}
	return Scrub(value)
}

// FilteringWriter wraps an io.Writer and scrubs credential patterns from
// everything written through it. Log file writers are wrapped with this so
// captured step output never lands on disk unredacted.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter wraps w with credential scrubbing.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. It reports the original length so callers do
// not observe a short write when redaction shrinks the payload.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	if _, err = fw.w.Write([]byte(Scrub(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}

package report

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/veritas/internal/constants"
	"github.com/mrz1836/veritas/internal/errors"
)

// Writer persists report artifacts to disk.
type Writer struct {
	log zerolog.Logger
}

// NewWriter creates a report writer.
func NewWriter(log zerolog.Logger) *Writer {
	return &Writer{log: log}
}

// Write persists the markdown report at path and the machine-readable JSON
// next to it. Any failure wraps ErrReportWrite: the invocation must abort,
// but only after the caller has printed the verdict to the console so the
// operator is never left with zero signal.
func (w *Writer) Write(path string, markdown string, machine []byte) error {
	if path == "" {
		path = constants.ReportFileName
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.Wrapf(errors.ErrReportWrite, "create %s: %v", dir, err)
		}
	}

	if err := os.WriteFile(path, []byte(markdown), 0o640); err != nil { //nolint:gosec // report is not sensitive
		return errors.Wrapf(errors.ErrReportWrite, "%s: %v", path, err)
	}

	jsonPath := jsonPathFor(path)
	if err := os.WriteFile(jsonPath, machine, 0o640); err != nil { //nolint:gosec // report is not sensitive
		return errors.Wrapf(errors.ErrReportWrite, "%s: %v", jsonPath, err)
	}

	w.log.Info().
		Str("report", path).
		Str("report_json", jsonPath).
		Msg("report artifacts written")
	return nil
}

// jsonPathFor derives the JSON artifact path from the markdown path.
func jsonPathFor(mdPath string) string {
	if strings.HasSuffix(mdPath, ".md") {
		return strings.TrimSuffix(mdPath, ".md") + ".json"
	}
	return mdPath + ".json"
}

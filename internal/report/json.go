package report

import (
	"encoding/json"
	"io"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
)

// JSONWriter outputs run reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON output with two-space
// indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) { w.indent = true }
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// jsonReport wraps the run report with its flattened output table so
// consumers get both without rebuilding the rows themselves.
type jsonReport struct {
	Report *model.RunReport  `json:"report"`
	Rows   []model.OutputRow `json:"rows"`
}

// Write outputs the run report and its output table in JSON format.
func (w *JSONWriter) Write(report *model.RunReport) (int, error) {
	wrapped := jsonReport{
		Report: report,
		Rows:   OutputRows(report),
	}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(wrapped, "", "  ")
	} else {
		data, err = json.Marshal(wrapped)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')
	return w.output.Write(data)
}

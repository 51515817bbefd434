package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
)

// csvHeader is the column contract of the output table. Downstream
// consumers select columns by name, so the header is part of the format.
var csvHeader = []string{
	"scope", "entity_key", "crime_type", "year", "kind", "value",
	"mae", "rmse", "mape",
}

// CSVWriter outputs the long output table as CSV.
// This is the format consumed by the dashboard layer.
//
// Design decision: We use standard encoding/csv rather than a third-party
// CSV library because the output table is plain rectangular data with no
// quoting or schema subtleties that would justify one.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report's output table in CSV format.
// The byte count is approximate: encoding/csv does not report bytes, so we
// return the number of records written instead.
func (w *CSVWriter) Write(report *model.RunReport) (int, error) {
	return w.WriteRows(OutputRows(report))
}

// WriteRows outputs pre-built output rows in CSV format.
func (w *CSVWriter) WriteRows(rows []model.OutputRow) (int, error) {
	cw := csv.NewWriter(w.output)

	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}

	written := 1
	for _, row := range rows {
		record := []string{
			row.Scope.String(),
			row.EntityKey,
			row.CrimeType,
			strconv.Itoa(row.Year),
			row.Kind,
			formatValue(row.Value),
			formatMetric(row.MAE),
			formatMetric(row.RMSE),
			formatMetric(row.MAPE),
		}
		if err := cw.Write(record); err != nil {
			return written, err
		}
		written++
	}

	cw.Flush()
	return written, cw.Error()
}

// formatValue renders a count without a trailing ".0" when it is integral.
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatMetric renders an optional metric, empty when absent.
func formatMetric(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

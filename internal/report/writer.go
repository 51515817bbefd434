package report

import (
	"io"
	"sort"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
)

// Writer defines the interface for run report output.
// Implementations write run results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the run report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.RunReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write run reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// OutputRows flattens a run report into the long output table: one actual
// row per observed (entity, year) and one forecast row per forecasted year.
// Validation forecasts carry their accuracy metrics; production forecasts
// have no ground truth and carry none. Rows are sorted by entity key, crime
// type, year, then kind, so output is deterministic for a given report.
func OutputRows(report *model.RunReport) []model.OutputRow {
	rows := make([]model.OutputRow, 0, len(report.Observations)+2*len(report.Results))

	for _, obs := range report.Observations {
		rows = append(rows, model.OutputRow{
			Scope:     obs.Scope,
			EntityKey: obs.EntityKey,
			CrimeType: obs.CrimeType,
			Year:      obs.Year,
			Kind:      model.KindActual,
			Value:     float64(obs.Count),
		})
	}

	for _, res := range report.Results {
		var mae, rmse, mape *float64
		if res.Metrics != nil {
			mae = ptr(res.Metrics.MAE)
			rmse = ptr(res.Metrics.RMSE)
			if res.Metrics.MAPEDefined {
				mape = ptr(res.Metrics.MAPE)
			}
		}
		for i, year := range res.TestYears {
			rows = append(rows, model.OutputRow{
				Scope:     res.Scope,
				EntityKey: res.EntityKey,
				CrimeType: res.CrimeType,
				Year:      year,
				Kind:      model.KindForecast,
				Value:     res.Forecasts[i],
				MAE:       mae,
				RMSE:      rmse,
				MAPE:      mape,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.EntityKey != b.EntityKey {
			return a.EntityKey < b.EntityKey
		}
		if a.CrimeType != b.CrimeType {
			return a.CrimeType < b.CrimeType
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Kind < b.Kind
	})
	return rows
}

func ptr(v float64) *float64 { return &v }

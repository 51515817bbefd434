package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
)

// MarkdownWriter outputs a run summary in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// printer formats counts with locale-aware digit grouping.
	printer *message.Printer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeMetrics(md, report)
	w.writeForecasts(md, report)
	w.writeFallbacks(md, report)
	w.writeSkips(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the run metadata table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Crime Forecast Run")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Scope", report.Scope.String()},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.Round(0).String()},
			{"Entities forecasted", strconv.Itoa(len(report.Results) / 2)},
			{"Entities skipped", strconv.Itoa(len(report.Skips))},
			{"Fallback models", strconv.Itoa(report.FallbackCount())},
		},
	})
	md.PlainText("")
}

// writeMetrics writes the per-entity validation accuracy table.
func (w *MarkdownWriter) writeMetrics(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Validation Accuracy")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Results)/2)
	for _, res := range report.Results {
		if res.Mode != model.ModeValidation {
			continue
		}
		rows = append(rows, []string{
			res.EntityKey,
			res.Spec.String(),
			w.formatMetric(metricMAE(res.Metrics)),
			w.formatMetric(metricRMSE(res.Metrics)),
			w.formatMAPE(res.Metrics),
		})
	}

	if len(rows) == 0 {
		md.PlainText("No entities were validated.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Entity", "Model", "MAE", "RMSE", "MAPE"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeForecasts writes the production forecast table.
func (w *MarkdownWriter) writeForecasts(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Forecasts")
	md.PlainText("")

	var rows [][]string
	for _, res := range report.Results {
		if res.Mode != model.ModeProduction {
			continue
		}
		for i, year := range res.TestYears {
			rows = append(rows, []string{
				res.EntityKey,
				strconv.Itoa(year),
				res.Spec.String(),
				w.printer.Sprintf("%.0f", res.Forecasts[i]),
			})
		}
	}

	if len(rows) == 0 {
		md.PlainText("No production forecasts were produced.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Entity", "Year", "Model", "Forecast"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFallbacks enumerates entities that used the naive fallback model.
// Fallbacks are reported, never hidden: a naive forecast looks like any
// other number unless the reader is told how it was produced.
func (w *MarkdownWriter) writeFallbacks(md *markdown.Markdown, report *model.RunReport) {
	var rows [][]string
	seen := make(map[string]bool)
	for _, res := range report.Results {
		if !res.Fallback {
			continue
		}
		key := res.EntityKey + "/" + res.Mode.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, []string{
			res.EntityKey,
			res.Mode.String(),
			res.Spec.String(),
			res.FallbackReason,
		})
	}
	if len(rows) == 0 {
		return
	}

	md.H2("Fallback Models")
	md.PlainText("")
	md.PlainText(fmt.Sprintf("%d forecast(s) fell back to a naive model:", len(rows)))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Entity", "Mode", "Model", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSkips enumerates entities that produced no forecast.
func (w *MarkdownWriter) writeSkips(md *markdown.Markdown, report *model.RunReport) {
	if len(report.Skips) == 0 {
		return
	}

	md.H2("Skipped Entities")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Skips))
	for _, skip := range report.Skips {
		rows = append(rows, []string{skip.EntityKey, skip.Reason})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Entity", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// formatMetric renders an optional metric value for the table.
func (w *MarkdownWriter) formatMetric(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// formatMAPE renders MAPE as a percentage, or a dash when every test year
// had a zero actual and the metric is undefined.
func (w *MarkdownWriter) formatMAPE(m *model.Metrics) string {
	if m == nil || !m.MAPEDefined {
		return "-"
	}
	return strconv.FormatFloat(m.MAPE, 'f', 2, 64) + "%"
}

func metricMAE(m *model.Metrics) *float64 {
	if m == nil {
		return nil
	}
	return &m.MAE
}

func metricRMSE(m *model.Metrics) *float64 {
	if m == nil {
		return nil
	}
	return &m.RMSE
}

// Package report turns a completed forecast run into its output formats.
//
// This package contains writers for different output formats:
//   - CSVWriter: the long output table consumed by the dashboard layer
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: human-readable run summary for documentation
//
// Design decision: We separate report writing from the run data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report

// Package model defines the core data structures used throughout the
// forecasting pipeline.
//
// This package contains the following main types:
//   - RawTable: The immutable wide-format input table
//   - ObservationRow: One cleaned long-format observation
//   - ForecastResult: The evaluated forecast for one entity and one mode
//   - RunReport: Everything produced by a single pipeline run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (normalize, store, runner, report, database)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model

// Package normalize reshapes the wide per-year input table into the
// canonical long-format observation rows the rest of the pipeline consumes.
//
// The reshape is a pure transformation: it reads the RawTable, never mutates
// it, and returns a new result. Absent counts become zero by policy (no
// police report is assumed to mean zero incidents, a documented source of
// potential underestimation bias), population columns are excluded as a
// denominator rather than an outcome, and malformed columns are dropped and
// counted rather than treated as fatal.
package normalize

package config

import "errors"

// Configuration validation errors.
// These are package-level sentinels so callers can use errors.Is for
// programmatic handling while still getting a readable message.
var (
	// ErrNoInput is returned when no input CSV path is specified.
	ErrNoInput = errors.New("no input specified: provide a wide-format CSV with --input")

	// ErrInvalidYearRange is returned when the year window has fewer than
	// two years. Validation mode needs at least one training year and one
	// held-out year.
	ErrInvalidYearRange = errors.New("invalid year range: max year must exceed min year")

	// ErrInvalidOrderBound is returned when a search bound is negative.
	ErrInvalidOrderBound = errors.New("invalid order bound: max p, d, and q must be non-negative")

	// ErrInvalidMinObservations is returned when the minimum series length
	// is too small to fit even the simplest model.
	ErrInvalidMinObservations = errors.New("invalid minimum observations: must be at least 3")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidEntityTimeout is returned when the per-entity timeout is
	// not positive.
	ErrInvalidEntityTimeout = errors.New("invalid entity timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidScope is returned for an unrecognized scope name.
	ErrInvalidScope = errors.New("invalid scope: use citywide, neighbourhood, or all")
)

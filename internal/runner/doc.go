// Package runner orchestrates order selection and forecast evaluation once
// per entity and collects the results into a single run report.
//
// Per-entity forecasting is embarrassingly parallel: every entity's series,
// search, and evaluation touch no shared mutable state beyond read-only
// lookups in the series store. The runner uses an errgroup-bounded worker
// pool and writes each entity's outcome to its own slot of a pre-allocated
// slice, so output order is by entity key regardless of completion order.
//
// Failures are entity-local: a series that is too short, or a fit that fails
// even with the fallback, records a skip and the run continues.
package runner

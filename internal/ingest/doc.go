// Package ingest loads the wide-format input CSV into the immutable
// RawTable the Normalizer consumes.
//
// The loader is deliberately thin: one header row, one record per
// neighbourhood, no schema discovery. Validating which columns mean what is
// the Normalizer's job.
package ingest

// Package database provides SQLite-based persistence for forecast runs.
// Each completed run is stored with its per-entity results and skips so
// that past runs can be listed and re-exported without recomputation.
package database

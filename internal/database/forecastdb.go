package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
)

// ForecastDB provides SQLite-based storage for forecast runs.
// It manages connection pooling and provides methods for saving and
// retrieving run reports.
//
// Design decision: We use a single database file for all runs rather than
// one file per run. Runs are small (a few hundred rows each) and keeping
// them together makes run history queries and backup trivial.
type ForecastDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ForecastDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ForecastDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ForecastDB, error) {
	dbPath := filepath.Join(dbDir, "crimecast.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	fdb := &ForecastDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := fdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return fdb, nil
}

// Close closes the database connection.
func (fdb *ForecastDB) Close() error {
	return fdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (fdb *ForecastDB) createTables() error {
	schema := `
	-- Runs store one row per pipeline execution, with the full report as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		scope TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		result_count INTEGER NOT NULL,
		skip_count INTEGER NOT NULL,
		fallback_count INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_scope ON runs(scope);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Results store one queryable row per entity forecast
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		entity_key TEXT NOT NULL,
		crime_type TEXT NOT NULL,
		mode TEXT NOT NULL,
		spec TEXT NOT NULL,
		fallback INTEGER NOT NULL DEFAULT 0,
		mae REAL,
		rmse REAL,
		mape REAL,
		FOREIGN KEY(run_id) REFERENCES runs(run_id)
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
	CREATE INDEX IF NOT EXISTS idx_results_entity ON results(entity_key);

	-- Skips record entities that produced no forecast and why
	CREATE TABLE IF NOT EXISTS skips (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		entity_key TEXT NOT NULL,
		reason TEXT NOT NULL,
		FOREIGN KEY(run_id) REFERENCES runs(run_id)
	);

	CREATE INDEX IF NOT EXISTS idx_skips_run ON skips(run_id);
	`

	_, err := fdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun persists a completed run report. The full report is stored as JSON
// on the run row, and per-entity results and skips are written to their own
// tables for querying without deserializing the report.
func (fdb *ForecastDB) SaveRun(ctx context.Context, report *model.RunReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize run report: %w", err)
	}

	tx, err := fdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (run_id, scope, started_at, elapsed_ms, result_count, skip_count, fallback_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.RunID,
		report.Scope.String(),
		report.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		report.Elapsed.Milliseconds(),
		len(report.Results),
		len(report.Skips),
		report.FallbackCount(),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, res := range report.Results {
		var mae, rmse, mape any
		if res.Metrics != nil {
			mae = res.Metrics.MAE
			rmse = res.Metrics.RMSE
			if res.Metrics.MAPEDefined {
				mape = res.Metrics.MAPE
			}
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO results (run_id, entity_key, crime_type, mode, spec, fallback, mae, rmse, mape)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			report.RunID,
			res.EntityKey,
			res.CrimeType,
			res.Mode.String(),
			res.Spec.String(),
			boolToInt(res.Fallback),
			mae,
			rmse,
			mape,
		)
		if err != nil {
			return fmt.Errorf("failed to insert result for %s: %w", res.EntityKey, err)
		}
	}

	for _, skip := range report.Skips {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO skips (run_id, entity_key, reason) VALUES (?, ?, ?)
		`, report.RunID, skip.EntityKey, skip.Reason)
		if err != nil {
			return fmt.Errorf("failed to insert skip for %s: %w", skip.EntityKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RunMetadata contains summary information about a stored run.
// This is used for displaying run history without loading the full report.
type RunMetadata struct {
	// ID is the unique identifier of the run row in the database.
	ID int64

	// RunID is the run's UUID.
	RunID string

	// Scope is the run's scope name.
	Scope string

	// StartedAt is when the run started.
	StartedAt time.Time

	// Elapsed is the run's wall-clock duration.
	Elapsed time.Duration

	// ResultCount, SkipCount, and FallbackCount summarize the run.
	ResultCount   int
	SkipCount     int
	FallbackCount int
}

// ListRuns returns metadata for stored runs, most recent first.
// limit <= 0 returns all runs.
func (fdb *ForecastDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, run_id, scope, started_at, elapsed_ms, result_count, skip_count, fallback_count
	FROM runs
	ORDER BY started_at DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := fdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var startedAt string
		var elapsedMs int64

		if err := rows.Scan(
			&meta.ID,
			&meta.RunID,
			&meta.Scope,
			&startedAt,
			&elapsedMs,
			&meta.ResultCount,
			&meta.SkipCount,
			&meta.FallbackCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		meta.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun retrieves a full run report by its run ID.
// Returns nil without error when the run does not exist.
func (fdb *ForecastDB) GetRun(ctx context.Context, runID string) (*model.RunReport, error) {
	query := `SELECT report_json FROM runs WHERE run_id = ?`

	var reportJSON string
	err := fdb.db.QueryRowContext(ctx, query, runID).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse run report: %w", err)
	}
	return &report, nil
}

// LatestRun retrieves the most recent run report, optionally filtered by
// scope name. Returns nil without error when no run matches.
func (fdb *ForecastDB) LatestRun(ctx context.Context, scope string) (*model.RunReport, error) {
	query := `SELECT report_json FROM runs`
	args := make([]any, 0, 1)
	if scope != "" {
		query += " WHERE scope = ?"
		args = append(args, scope)
	}
	query += " ORDER BY started_at DESC, id DESC LIMIT 1"

	var reportJSON string
	err := fdb.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse run report: %w", err)
	}
	return &report, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

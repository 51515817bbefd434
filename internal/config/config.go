package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The year range matches the Toronto open-data release the pipeline was
// built for; everything else is sized for short annual series.
const (
	// DefaultMinYear and DefaultMaxYear bound the observed window. The
	// production forecast targets DefaultMaxYear + 1.
	DefaultMinYear = 2014
	DefaultMaxYear = 2024

	// DefaultMaxP and DefaultMaxQ bound the order grid. Second-order terms
	// are the most a nine-to-ten point training window can support.
	DefaultMaxP = 2
	DefaultMaxQ = 2

	// DefaultMaxD caps differencing. Two differences on a ten-point series
	// already leaves only eight observations; more would be over-differencing.
	DefaultMaxD = 2

	// DefaultMinObservations is the shortest series the runner will try to
	// forecast. Shorter series are skipped, not zero-padded.
	DefaultMinObservations = 6

	// DefaultWorkers is the worker-pool size for per-entity forecasting.
	// Entities are independent, so this only trades CPU for wall time.
	DefaultWorkers = 8

	// DefaultEntityTimeout bounds one entity's select-fit-forecast cycle.
	// The grid is finite and small, so this only catches pathological fits.
	DefaultEntityTimeout = 30 * time.Second

	// DefaultHoodIDColumn and DefaultAreaNameColumn are the required
	// identifying columns of the wide input table.
	DefaultHoodIDColumn   = "HOOD_ID"
	DefaultAreaNameColumn = "AREA_NAME"

	// DefaultPopulationMarker is the crime-type token marking population
	// columns. Population is a denominator, never a forecast target.
	DefaultPopulationMarker = "POPULATION"

	// AppName is the application name used for XDG directory paths.
	AppName = "crimecast"
)

// Config holds all configuration options for a pipeline run.
// It is populated from CLI flags plus an optional YAML profile and passed
// through the application by dependency injection rather than global state.
type Config struct {
	// InputPath is the wide-format CSV to ingest.
	InputPath string

	// OutputPath is where the output table is written. Empty means stdout.
	OutputPath string

	// Scope selects which entity scope to run: "citywide", "neighbourhood",
	// or "all" for both.
	Scope string

	// MinYear and MaxYear bound the observed window (inclusive). Validation
	// mode holds out MaxYear; production mode forecasts MaxYear + 1.
	MinYear int
	MaxYear int

	// MaxP, MaxD, MaxQ bound the ARIMA order search.
	MaxP int
	MaxD int
	MaxQ int

	// MinObservations is the minimum series length to attempt forecasting.
	MinObservations int

	// Workers is the number of concurrent per-entity forecasts.
	Workers int

	// EntityTimeout bounds one entity's model search and evaluation.
	EntityTimeout time.Duration

	// RetrainOnFullWindow controls the production forecast: when true the
	// order is re-selected on the full observed window; when false the
	// validation-selected order is reused and only refit.
	RetrainOnFullWindow bool

	// HoodIDColumn and AreaNameColumn name the identifying input columns.
	HoodIDColumn   string
	AreaNameColumn string

	// PopulationMarker is the non-crime column token to exclude.
	PopulationMarker string

	// JSONReport emits the run report as JSON instead of the CSV table.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport emits a Markdown run summary instead of the CSV table.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// Verbose enables debug-level logging.
	Verbose bool

	// SaveToDB persists the run to the results database.
	SaveToDB bool

	// DBDir is the directory holding the results database. Defaults to the
	// XDG data directory.
	DBDir string

	// ProfilePath is an explicit YAML profile path. Empty means search the
	// working directory and then the home directory.
	ProfilePath string
}

// NewConfig creates a Config with default values.
// Many defaults are non-zero, so relying on zero values would be wrong; the
// constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		Scope:               "all",
		MinYear:             DefaultMinYear,
		MaxYear:             DefaultMaxYear,
		MaxP:                DefaultMaxP,
		MaxD:                DefaultMaxD,
		MaxQ:                DefaultMaxQ,
		MinObservations:     DefaultMinObservations,
		Workers:             DefaultWorkers,
		EntityTimeout:       DefaultEntityTimeout,
		RetrainOnFullWindow: true,
		HoodIDColumn:        DefaultHoodIDColumn,
		AreaNameColumn:      DefaultAreaNameColumn,
		PopulationMarker:    DefaultPopulationMarker,
		SaveToDB:            true,
		DBDir:               XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for crimecast.
// On Linux: ~/.local/share/crimecast.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for crimecast.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It is called once after flag parsing, before any data is read, so invalid
// runs fail fast with a specific sentinel error.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return ErrNoInput
	}
	if c.MaxYear <= c.MinYear {
		return ErrInvalidYearRange
	}
	if c.MaxP < 0 || c.MaxD < 0 || c.MaxQ < 0 {
		return ErrInvalidOrderBound
	}
	if c.MinObservations < 3 {
		return ErrInvalidMinObservations
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.EntityTimeout <= 0 {
		return ErrInvalidEntityTimeout
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	switch c.Scope {
	case "all", "citywide", "neighbourhood":
	default:
		return ErrInvalidScope
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/config"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/database"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/ingest"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/normalize"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/report"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/runner"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/selector"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/store"
)

// NewForecastCmd creates the forecast command.
func NewForecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast crime counts from the wide open-data CSV",
		Long: `Forecast runs the full pipeline: reshape the wide crime-rates CSV into
per-entity annual series, select an ARIMA model for each series, validate
it against the held-out final year, and forecast the next unobserved year.

Two entity scopes are forecasted:
- citywide: one series per crime type, summed over all neighbourhoods
- neighbourhood: one series per neighbourhood, summed over all crime types

Examples:
  # Forecast both scopes, output table to stdout
  crimecast forecast -i neighbourhood-crime-rates.csv

  # Write the output table to a file
  crimecast forecast -i crime.csv -o forecasts.csv

  # Citywide only, Markdown summary
  crimecast forecast -i crime.csv --scope citywide --markdown

  # Use a custom profile file
  crimecast forecast -i crime.csv -c myprofile.yaml

Profile file (.crimecast) example:
  scope: citywide
  workers: 4
  max_p: 1
  retrain_on_full_window: false`,
		Args: cobra.NoArgs,
		RunE: runForecastCmd,
	}

	cmd.Flags().StringP("input", "i", "", "Wide-format crime-rates CSV to ingest (required)")
	cmd.Flags().StringP("output", "o", "", "Write output to specified file path (default: stdout)")
	cmd.Flags().StringP("scope", "s", "all", "Entity scope to forecast: citywide, neighbourhood, or all")

	cmd.Flags().Int("min-year", config.DefaultMinYear, "First observed year (inclusive)")
	cmd.Flags().Int("max-year", config.DefaultMaxYear, "Last observed year; the forecast targets the year after")

	cmd.Flags().Int("max-p", config.DefaultMaxP, "Maximum autoregressive order in the search grid")
	cmd.Flags().Int("max-d", config.DefaultMaxD, "Maximum differencing order")
	cmd.Flags().Int("max-q", config.DefaultMaxQ, "Maximum moving-average order")
	cmd.Flags().Int("min-obs", config.DefaultMinObservations, "Minimum series length to forecast; shorter entities are skipped")

	cmd.Flags().IntP("workers", "w", config.DefaultWorkers, "Number of concurrent entity forecasts")
	cmd.Flags().Duration("entity-timeout", config.DefaultEntityTimeout, "Per-entity budget for model search and evaluation")
	cmd.Flags().Bool("retrain", true, "Re-select the model order on the full window for the production forecast")

	cmd.Flags().StringP("config", "c", "", "Profile file path (default: .crimecast in current or home directory)")

	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().Bool("no-save", false, "Do not persist the run to the results database")

	return cmd
}

// runForecastCmd executes the forecast command.
func runForecastCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runForecast(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags and the optional
// YAML profile. Profile values apply first; explicitly set flags win.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	if cfg.ProfilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	// If the user explicitly specified a profile path, error if not found.
	// If no path specified, silently skip when no file is discovered.
	explicitProfile := cfg.ProfilePath != ""
	profilePath := config.FindProfile(cfg.ProfilePath)
	if profilePath != "" {
		profile, err := config.LoadProfile(profilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile %s: %w", profilePath, err)
		}
		profile.Apply(cfg)
	} else if explicitProfile {
		return nil, fmt.Errorf("profile file not found: %s", cfg.ProfilePath)
	}

	if cmd.Flags().Changed("input") || cfg.InputPath == "" {
		if cfg.InputPath, err = cmd.Flags().GetString("input"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("output") || cfg.OutputPath == "" {
		if cfg.OutputPath, err = cmd.Flags().GetString("output"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("scope") {
		if cfg.Scope, err = cmd.Flags().GetString("scope"); err != nil {
			return nil, err
		}
	}
	if err := intFlag(cmd, "min-year", &cfg.MinYear); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "max-year", &cfg.MaxYear); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "max-p", &cfg.MaxP); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "max-d", &cfg.MaxD); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "max-q", &cfg.MaxQ); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "min-obs", &cfg.MinObservations); err != nil {
		return nil, err
	}
	if err := intFlag(cmd, "workers", &cfg.Workers); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("entity-timeout") {
		if cfg.EntityTimeout, err = cmd.Flags().GetDuration("entity-timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("retrain") {
		if cfg.RetrainOnFullWindow, err = cmd.Flags().GetBool("retrain"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// intFlag copies an int flag into dest when the flag was explicitly set.
// Profile values survive otherwise.
func intFlag(cmd *cobra.Command, name string, dest *int) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return err
	}
	*dest = v
	return nil
}

// runForecast executes the pipeline for every requested scope.
func runForecast(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting forecast",
		"input", cfg.InputPath,
		"scope", cfg.Scope,
		"workers", cfg.Workers,
		"saveToDB", cfg.SaveToDB,
	)

	seriesStore, err := loadStore(cfg, logger)
	if err != nil {
		return err
	}

	// Open database connection if saving is enabled
	var db *database.ForecastDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	run := runner.New(seriesStore,
		runner.WithLogger(logger),
		runner.WithWorkers(cfg.Workers),
		runner.WithEntityTimeout(cfg.EntityTimeout),
		runner.WithMinObservations(cfg.MinObservations),
		runner.WithRetrainOnFullWindow(cfg.RetrainOnFullWindow),
		runner.WithSelectorConfig(selector.Config{
			MaxP:    cfg.MaxP,
			MaxD:    cfg.MaxD,
			MaxQ:    cfg.MaxQ,
			Epsilon: selector.DefaultEpsilon,
		}),
	)

	var reports []*model.RunReport
	for _, scope := range scopesFor(cfg.Scope) {
		startTime := time.Now()
		fmt.Fprintf(os.Stderr, "Forecasting %s entities...\n", scope)

		rep, err := run.Run(ctx, scope)
		if err != nil {
			return fmt.Errorf("forecast run failed for scope %s: %w", scope, err)
		}
		reports = append(reports, rep)

		fmt.Fprintf(os.Stderr, "Scope %s completed in %s (%d results, %d skips, %d fallbacks)\n",
			scope, time.Since(startTime).Round(time.Millisecond),
			len(rep.Results), len(rep.Skips), rep.FallbackCount())

		if db != nil {
			if err := db.SaveRun(ctx, rep); err != nil {
				logger.Error("failed to save run", "scope", scope.String(), "error", err)
			} else {
				logger.Info("run saved to database", "runID", rep.RunID)
			}
		}
	}

	return outputReports(cfg, reports)
}

// loadStore ingests and normalizes the input CSV into a series store.
func loadStore(cfg *config.Config, logger *slog.Logger) (*store.SeriesStore, error) {
	table, err := ingest.LoadCSV(cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	result, err := normalize.Normalize(table, normalize.Options{
		HoodIDColumn:     cfg.HoodIDColumn,
		AreaNameColumn:   cfg.AreaNameColumn,
		PopulationMarker: cfg.PopulationMarker,
		MinYear:          cfg.MinYear,
		MaxYear:          cfg.MaxYear,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to normalize input: %w", err)
	}

	logger.Info("input normalized",
		"rows", len(result.Rows),
		"crimeTypes", len(result.CrimeTypes),
		"droppedColumns", len(result.DroppedColumns),
		"zeroFilled", result.ZeroFilled,
	)

	return store.Build(result.Rows, cfg.MinYear, cfg.MaxYear)
}

// scopesFor maps the scope flag value to entity scopes.
func scopesFor(scope string) []model.Scope {
	switch scope {
	case "citywide":
		return []model.Scope{model.ScopeCityWide}
	case "neighbourhood":
		return []model.Scope{model.ScopeNeighbourhood}
	default:
		return []model.Scope{model.ScopeCityWide, model.ScopeNeighbourhood}
	}
}

// outputReports writes all run reports in the requested format.
// The CSV output table merges every scope into one table; JSON and Markdown
// emit one document per run.
func outputReports(cfg *config.Config, reports []*model.RunReport) error {
	output := os.Stdout
	if cfg.OutputPath != "" {
		dir := filepath.Dir(cfg.OutputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	if cfg.JSONReport {
		w := report.NewJSONWriter(output, report.WithPrettyPrint())
		for _, rep := range reports {
			if _, err := w.Write(rep); err != nil {
				return err
			}
		}
		return nil
	}

	if cfg.MarkdownReport {
		w := report.NewMarkdownWriter(output)
		for _, rep := range reports {
			if _, err := w.Write(rep); err != nil {
				return err
			}
		}
		return nil
	}

	// Default: the long output table as CSV
	var rows []model.OutputRow
	for _, rep := range reports {
		rows = append(rows, report.OutputRows(rep)...)
	}
	_, err := report.NewCSVWriter(output).WriteRows(rows)
	return err
}

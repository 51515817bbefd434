package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/config"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/ingest"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/normalize"
)

// NewNormalizeCmd creates the normalize command.
func NewNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Reshape the wide crime-rates CSV into a long table",
		Long: `Normalize runs only the reshape stage: it reads the wide open-data CSV
and writes one row per (neighbourhood, crime type, year) with the cleaned
count. No models are fit.

This is useful for collaborators who want tidy data without forecasts.

Examples:
  # Write the long table to stdout
  crimecast normalize -i neighbourhood-crime-rates.csv

  # Write to a file
  crimecast normalize -i crime.csv -o long.csv`,
		Args: cobra.NoArgs,
		RunE: runNormalizeCmd,
	}

	cmd.Flags().StringP("input", "i", "", "Wide-format crime-rates CSV to ingest (required)")
	cmd.Flags().StringP("output", "o", "", "Write output to specified file path (default: stdout)")
	cmd.Flags().Int("min-year", config.DefaultMinYear, "First accepted year (inclusive)")
	cmd.Flags().Int("max-year", config.DefaultMaxYear, "Last accepted year (inclusive)")

	return cmd
}

// runNormalizeCmd executes the normalize command.
func runNormalizeCmd(cmd *cobra.Command, _ []string) error {
	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return err
	}
	if input == "" {
		return config.ErrNoInput
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	minYear, err := cmd.Flags().GetInt("min-year")
	if err != nil {
		return err
	}
	maxYear, err := cmd.Flags().GetInt("max-year")
	if err != nil {
		return err
	}
	if maxYear <= minYear {
		return config.ErrInvalidYearRange
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	table, err := ingest.LoadCSV(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	result, err := normalize.Normalize(table, normalize.Options{
		HoodIDColumn:     config.DefaultHoodIDColumn,
		AreaNameColumn:   config.DefaultAreaNameColumn,
		PopulationMarker: config.DefaultPopulationMarker,
		MinYear:          minYear,
		MaxYear:          maxYear,
	})
	if err != nil {
		return fmt.Errorf("failed to normalize input: %w", err)
	}

	logger.Info("input normalized",
		"rows", len(result.Rows),
		"crimeTypes", len(result.CrimeTypes),
		"droppedColumns", len(result.DroppedColumns),
		"zeroFilled", result.ZeroFilled,
	)

	output := os.Stdout
	if outputPath != "" {
		dir := filepath.Dir(outputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	cw := csv.NewWriter(output)
	if err := cw.Write([]string{"neighbourhood", "crime_type", "year", "count"}); err != nil {
		return err
	}
	for _, row := range result.Rows {
		record := []string{
			row.EntityKey,
			row.CrimeType,
			strconv.Itoa(row.Year),
			strconv.Itoa(row.Count),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

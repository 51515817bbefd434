package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/config"
)

// writeWideCSV writes a small wide-format crime-rates table covering
// 2014-2024 and returns its path.
func writeWideCSV(t *testing.T) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("HOOD_ID,AREA_NAME")
	for year := 2014; year <= 2024; year++ {
		fmt.Fprintf(&sb, ",ASSAULT_%d", year)
	}
	sb.WriteString("\n1,Alpha")
	for i, year := 0, 2014; year <= 2024; i, year = i+1, year+1 {
		fmt.Fprintf(&sb, ",%d", 150+7*i)
	}
	sb.WriteString("\n2,Flat")
	for year := 2014; year <= 2024; year++ {
		sb.WriteString(",40")
	}
	sb.WriteString("\n")

	path := filepath.Join(t.TempDir(), "crime.csv")
	if err := os.WriteFile(path, []byte(sb.String()), 0600); err != nil {
		t.Fatalf("failed to write input CSV: %v", err)
	}
	return path
}

// TestNewRootCmd tests the command tree wiring.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	if cmd.Use != "crimecast" {
		t.Errorf("Use = %q, want crimecast", cmd.Use)
	}

	want := map[string]bool{
		"forecast":  false,
		"normalize": false,
		"runs":      false,
		"version":   false,
	}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

// TestVersionCmd tests the version subcommand output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "crimecast version") {
		t.Errorf("output = %q, want it to contain %q", out.String(), "crimecast version")
	}
}

// TestForecastCmd tests the full pipeline through the CLI.
func TestForecastCmd(t *testing.T) {
	t.Parallel()

	t.Run("writes the output table", func(t *testing.T) {
		t.Parallel()

		input := writeWideCSV(t)
		output := filepath.Join(t.TempDir(), "out", "forecasts.csv")

		cmd := NewRootCmd()
		cmd.SetArgs([]string{
			"forecast",
			"--input", input,
			"--output", output,
			"--scope", "neighbourhood",
			"--no-save",
		})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")

		if lines[0] != "scope,entity_key,crime_type,year,kind,value,mae,rmse,mape" {
			t.Errorf("header = %q", lines[0])
		}
		// Per entity: 11 actual rows, 1 validation forecast, 1 production
		// forecast. Two entities plus the header.
		if len(lines) != 1+2*13 {
			t.Errorf("lines = %d, want 27", len(lines))
		}
		out := string(data)
		for _, want := range []string{
			"neighbourhood,Alpha,ALL,2025,forecast",
			"neighbourhood,Flat,ALL,2025,forecast,40",
			"neighbourhood,Alpha,ALL,2014,actual,150",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("markdown summary", func(t *testing.T) {
		t.Parallel()

		input := writeWideCSV(t)
		output := filepath.Join(t.TempDir(), "report.md")

		cmd := NewRootCmd()
		cmd.SetArgs([]string{
			"forecast",
			"-i", input,
			"-o", output,
			"-s", "citywide",
			"--markdown",
			"--no-save",
		})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		for _, want := range []string{"# Crime Forecast Run", "## Validation Accuracy", "## Forecasts"} {
			if !strings.Contains(string(data), want) {
				t.Errorf("markdown missing %q", want)
			}
		}
	})

	t.Run("missing input fails validation", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"forecast", "--no-save"})
		if err := cmd.Execute(); !errors.Is(err, config.ErrNoInput) {
			t.Errorf("err = %v, want %v", err, config.ErrNoInput)
		}
	})

	t.Run("conflicting report formats are rejected", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		cmd.SetArgs([]string{
			"forecast", "-i", writeWideCSV(t), "--json", "--markdown", "--no-save",
		})
		if err := cmd.Execute(); !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("err = %v, want %v", err, config.ErrConflictingReportFormats)
		}
	})

	t.Run("explicit missing profile errors", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		cmd.SetArgs([]string{
			"forecast",
			"-i", writeWideCSV(t),
			"-c", filepath.Join(t.TempDir(), "absent.yaml"),
			"--no-save",
		})
		err := cmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "profile file not found") {
			t.Errorf("err = %v, want profile-not-found", err)
		}
	})
}

// TestNormalizeCmd tests the reshape-only command.
func TestNormalizeCmd(t *testing.T) {
	t.Parallel()

	t.Run("writes the long table", func(t *testing.T) {
		t.Parallel()

		input := writeWideCSV(t)
		output := filepath.Join(t.TempDir(), "long.csv")

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"normalize", "-i", input, "-o", output})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")

		if lines[0] != "neighbourhood,crime_type,year,count" {
			t.Errorf("header = %q", lines[0])
		}
		// Two neighbourhoods, one crime type, eleven years.
		if len(lines) != 1+2*11 {
			t.Errorf("lines = %d, want 23", len(lines))
		}
		if !strings.Contains(string(data), "Alpha,ASSAULT,2014,150") {
			t.Errorf("output missing first Alpha row:\n%s", string(data))
		}
	})

	t.Run("missing input errors", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"normalize"})
		if err := cmd.Execute(); !errors.Is(err, config.ErrNoInput) {
			t.Errorf("err = %v, want %v", err, config.ErrNoInput)
		}
	})

	t.Run("inverted year range errors", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		cmd.SetArgs([]string{
			"normalize", "-i", writeWideCSV(t),
			"--min-year", "2024", "--max-year", "2014",
		})
		if err := cmd.Execute(); !errors.Is(err, config.ErrInvalidYearRange) {
			t.Errorf("err = %v, want %v", err, config.ErrInvalidYearRange)
		}
	})
}

// TestBuildConfig tests flag and profile layering.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags override profile values", func(t *testing.T) {
		t.Parallel()

		profile := filepath.Join(t.TempDir(), ".crimecast")
		if err := os.WriteFile(profile, []byte("scope: citywide\nworkers: 2\nmaxP: 1\n"), 0600); err != nil {
			t.Fatalf("failed to write profile: %v", err)
		}

		cmd := NewForecastCmd()
		if err := cmd.Flags().Parse([]string{
			"-i", "in.csv", "-c", profile, "--workers", "5",
		}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Scope != "citywide" {
			t.Errorf("scope = %q, want citywide from profile", cfg.Scope)
		}
		if cfg.MaxP != 1 {
			t.Errorf("maxP = %d, want 1 from profile", cfg.MaxP)
		}
		if cfg.Workers != 5 {
			t.Errorf("workers = %d, want 5 from flag", cfg.Workers)
		}
	})

	t.Run("no-save disables persistence", func(t *testing.T) {
		t.Parallel()

		cmd := NewForecastCmd()
		if err := cmd.Flags().Parse([]string{"-i", "in.csv", "--no-save"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.SaveToDB {
			t.Error("SaveToDB should be false with --no-save")
		}
	})
}

// TestScopesFor tests the scope flag mapping.
func TestScopesFor(t *testing.T) {
	t.Parallel()

	if got := scopesFor("citywide"); len(got) != 1 {
		t.Errorf("citywide scopes = %v, want one", got)
	}
	if got := scopesFor("neighbourhood"); len(got) != 1 {
		t.Errorf("neighbourhood scopes = %v, want one", got)
	}
	if got := scopesFor("all"); len(got) != 2 {
		t.Errorf("all scopes = %v, want two", got)
	}
}

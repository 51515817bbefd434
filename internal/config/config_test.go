package config

import (
	"errors"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := NewConfig()
	cfg.InputPath = "crime.csv"
	return cfg
}

// TestConfigValidate tests validation with table-driven cases.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing input",
			mutate:  func(c *Config) { c.InputPath = "" },
			wantErr: ErrNoInput,
		},
		{
			name:    "inverted year range",
			mutate:  func(c *Config) { c.MinYear = 2024; c.MaxYear = 2020 },
			wantErr: ErrInvalidYearRange,
		},
		{
			name:    "single-year window",
			mutate:  func(c *Config) { c.MinYear = 2024; c.MaxYear = 2024 },
			wantErr: ErrInvalidYearRange,
		},
		{
			name:    "negative order bound",
			mutate:  func(c *Config) { c.MaxP = -1 },
			wantErr: ErrInvalidOrderBound,
		},
		{
			name:    "too small min observations",
			mutate:  func(c *Config) { c.MinObservations = 2 },
			wantErr: ErrInvalidMinObservations,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: ErrInvalidWorkers,
		},
		{
			name:    "zero entity timeout",
			mutate:  func(c *Config) { c.EntityTimeout = 0 },
			wantErr: ErrInvalidEntityTimeout,
		},
		{
			name:    "conflicting report formats",
			mutate:  func(c *Config) { c.JSONReport = true; c.MarkdownReport = true },
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "unknown scope",
			mutate:  func(c *Config) { c.Scope = "province" },
			wantErr: ErrInvalidScope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestNewConfig tests the defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if cfg.MinYear != DefaultMinYear || cfg.MaxYear != DefaultMaxYear {
		t.Errorf("year window = [%d, %d], want [%d, %d]",
			cfg.MinYear, cfg.MaxYear, DefaultMinYear, DefaultMaxYear)
	}
	if cfg.MaxP != DefaultMaxP || cfg.MaxD != DefaultMaxD || cfg.MaxQ != DefaultMaxQ {
		t.Errorf("order bounds = (%d,%d,%d), want (%d,%d,%d)",
			cfg.MaxP, cfg.MaxD, cfg.MaxQ, DefaultMaxP, DefaultMaxD, DefaultMaxQ)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}
	if cfg.EntityTimeout != 30*time.Second {
		t.Errorf("EntityTimeout = %v, want 30s", cfg.EntityTimeout)
	}
	if !cfg.RetrainOnFullWindow {
		t.Error("RetrainOnFullWindow should default to true")
	}
	if cfg.Scope != "all" {
		t.Errorf("Scope = %q, want all", cfg.Scope)
	}
}

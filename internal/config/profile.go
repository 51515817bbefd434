package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultProfileFile is the default YAML profile file name.
const DefaultProfileFile = ".crimecast"

// ErrProfileNotFound is returned when the profile file does not exist.
// Callers decide whether that is fatal based on whether the path was
// explicitly specified by the user.
var ErrProfileNotFound = errors.New("profile file not found")

// Profile holds run settings loadable from a YAML file, so teams can pin
// search bounds and schema column names per repository without repeating
// flags. Zero values mean "not set" and leave the flag-derived value alone.
type Profile struct {
	// Scope selects the entity scope: citywide, neighbourhood, or all.
	Scope string `yaml:"scope,omitempty"`

	// MaxP, MaxD, MaxQ override the order search bounds.
	MaxP int `yaml:"maxP,omitempty"`
	MaxD int `yaml:"maxD,omitempty"`
	MaxQ int `yaml:"maxQ,omitempty"`

	// MinObservations overrides the minimum series length.
	MinObservations int `yaml:"minObservations,omitempty"`

	// Workers overrides the worker-pool size.
	Workers int `yaml:"workers,omitempty"`

	// EntityTimeout overrides the per-entity timeout.
	EntityTimeout time.Duration `yaml:"entityTimeout,omitempty"`

	// RetrainOnFullWindow overrides the production retraining choice.
	// A pointer distinguishes "unset" from an explicit false.
	RetrainOnFullWindow *bool `yaml:"retrainOnFullWindow,omitempty"`

	// HoodIDColumn, AreaNameColumn, and PopulationMarker override the input
	// schema expectations.
	HoodIDColumn     string `yaml:"hoodIDColumn,omitempty"`
	AreaNameColumn   string `yaml:"areaNameColumn,omitempty"`
	PopulationMarker string `yaml:"populationMarker,omitempty"`
}

// LoadProfile loads a Profile from a YAML file.
// Returns ErrProfileNotFound when the file does not exist.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided profile path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindProfile searches for the profile file:
// an explicit path wins, then .crimecast in the current directory, then the
// home directory. Returns empty when nothing is found.
func FindProfile(explicitPath string) string {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err == nil {
			return explicitPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultProfileFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultProfileFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// Apply overlays the profile's set values onto the config.
func (p *Profile) Apply(cfg *Config) {
	if p.Scope != "" {
		cfg.Scope = p.Scope
	}
	if p.MaxP > 0 {
		cfg.MaxP = p.MaxP
	}
	if p.MaxD > 0 {
		cfg.MaxD = p.MaxD
	}
	if p.MaxQ > 0 {
		cfg.MaxQ = p.MaxQ
	}
	if p.MinObservations > 0 {
		cfg.MinObservations = p.MinObservations
	}
	if p.Workers > 0 {
		cfg.Workers = p.Workers
	}
	if p.EntityTimeout > 0 {
		cfg.EntityTimeout = p.EntityTimeout
	}
	if p.RetrainOnFullWindow != nil {
		cfg.RetrainOnFullWindow = *p.RetrainOnFullWindow
	}
	if p.HoodIDColumn != "" {
		cfg.HoodIDColumn = p.HoodIDColumn
	}
	if p.AreaNameColumn != "" {
		cfg.AreaNameColumn = p.AreaNameColumn
	}
	if p.PopulationMarker != "" {
		cfg.PopulationMarker = p.PopulationMarker
	}
}

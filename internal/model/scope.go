package model

import "fmt"

// Scope identifies which aggregation a forecast entity belongs to.
// Each entity is exactly one of: a crime type aggregated city-wide, or a
// neighbourhood aggregated across all crime types.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output for reports and the database.
type Scope int

const (
	// ScopeCityWide is one series per crime type, with counts summed over
	// all neighbourhoods for each year.
	ScopeCityWide Scope = iota

	// ScopeNeighbourhood is one series per neighbourhood, with counts summed
	// over all crime types for each year.
	ScopeNeighbourhood
)

// String returns a human-readable representation of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeCityWide:
		return "citywide"
	case ScopeNeighbourhood:
		return "neighbourhood"
	default:
		return "unknown"
	}
}

// ParseScope converts a scope name to a Scope value.
// Accepted names are "citywide" and "neighbourhood".
func ParseScope(name string) (Scope, error) {
	switch name {
	case "citywide":
		return ScopeCityWide, nil
	case "neighbourhood":
		return ScopeNeighbourhood, nil
	default:
		return 0, fmt.Errorf("unknown scope %q (use citywide or neighbourhood)", name)
	}
}

// MarshalText implements encoding.TextMarshaler so Scope serializes as its
// name in JSON output rather than an opaque integer.
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scope) UnmarshalText(text []byte) error {
	parsed, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

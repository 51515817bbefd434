package normalize

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
)

// ErrSchema is returned when the input table is missing required identifying
// columns. This is fatal to the whole run: without neighbourhood identity
// nothing can be normalized at all.
var ErrSchema = errors.New("input schema error")

// Options configures the reshape.
type Options struct {
	// HoodIDColumn and AreaNameColumn are the required identifying columns.
	HoodIDColumn   string
	AreaNameColumn string

	// PopulationMarker is the crime-type token marking population columns,
	// which are excluded entirely from the output.
	PopulationMarker string

	// MinYear and MaxYear bound the accepted year range (inclusive). Columns
	// with years outside the range are dropped and counted.
	MinYear int
	MaxYear int
}

// Result is the outcome of one reshape.
type Result struct {
	// Rows are the cleaned observations: exactly one row per
	// (neighbourhood, crime type, year), sorted by entity key, crime type,
	// then year. Every combination in range is present, absent counts as 0.
	Rows []model.ObservationRow

	// CrimeTypes are the distinct crime types seen, sorted.
	CrimeTypes []string

	// DroppedColumns are wide columns that encoded no parseable
	// (crime type, year) pair, or a year outside the accepted range.
	DroppedColumns []string

	// ZeroFilled counts cells that were absent or unparseable and recorded
	// as zero.
	ZeroFilled int
}

// Normalize reshapes the wide table into long-format observation rows.
func Normalize(table *model.RawTable, opts Options) (*Result, error) {
	for _, required := range []string{opts.HoodIDColumn, opts.AreaNameColumn} {
		if !table.HasColumn(required) {
			return nil, fmt.Errorf("%w: missing required column %q", ErrSchema, required)
		}
	}

	// Classify wide columns once up front.
	type valueColumn struct {
		name      string
		crimeType string
		year      int
	}
	var valueColumns []valueColumn
	var dropped []string
	crimeTypeSet := make(map[string]struct{})

	for _, col := range table.Columns() {
		if col == opts.HoodIDColumn || col == opts.AreaNameColumn {
			continue
		}
		crimeType, year, ok := splitColumn(col)
		if !ok || year < opts.MinYear || year > opts.MaxYear {
			dropped = append(dropped, col)
			continue
		}
		if crimeType == opts.PopulationMarker {
			// A denominator, not an outcome variable.
			continue
		}
		valueColumns = append(valueColumns, valueColumn{name: col, crimeType: crimeType, year: year})
		crimeTypeSet[crimeType] = struct{}{}
	}

	crimeTypes := make([]string, 0, len(crimeTypeSet))
	for ct := range crimeTypeSet {
		crimeTypes = append(crimeTypes, ct)
	}
	sort.Strings(crimeTypes)

	// Accumulate counts keyed by (entity, crime type, year). Duplicate
	// neighbourhood rows in the source sum into one observation, preserving
	// the one-row-per-combination invariant.
	type obsKey struct {
		entity    string
		crimeType string
		year      int
	}
	counts := make(map[obsKey]int)
	entitySet := make(map[string]struct{})
	zeroFilled := 0

	for row := 0; row < table.Len(); row++ {
		name, _ := table.Cell(row, opts.AreaNameColumn)
		name = strings.TrimSpace(name)
		if name == "" {
			id, _ := table.Cell(row, opts.HoodIDColumn)
			name = strings.TrimSpace(id)
		}
		if name == "" {
			continue
		}
		entitySet[name] = struct{}{}

		for _, vc := range valueColumns {
			cell, _ := table.Cell(row, vc.name)
			count, filled := parseCount(cell)
			if filled {
				zeroFilled++
			}
			counts[obsKey{entity: name, crimeType: vc.crimeType, year: vc.year}] += count
		}
	}

	entities := make([]string, 0, len(entitySet))
	for e := range entitySet {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	// Emit the full grid so every series is contiguous: one row per
	// (entity, crime type, year), zero where nothing was observed.
	rows := make([]model.ObservationRow, 0, len(entities)*len(crimeTypes)*(opts.MaxYear-opts.MinYear+1))
	for _, entity := range entities {
		for _, ct := range crimeTypes {
			for year := opts.MinYear; year <= opts.MaxYear; year++ {
				rows = append(rows, model.ObservationRow{
					Scope:     model.ScopeNeighbourhood,
					EntityKey: entity,
					CrimeType: ct,
					Year:      year,
					Count:     counts[obsKey{entity: entity, crimeType: ct, year: year}],
				})
			}
		}
	}

	sort.Strings(dropped)

	return &Result{
		Rows:           rows,
		CrimeTypes:     crimeTypes,
		DroppedColumns: dropped,
		ZeroFilled:     zeroFilled,
	}, nil
}

// splitColumn parses a wide column name of the form <CRIME_TYPE>_<YEAR>.
// The split is on the last underscore, since crime-type tokens themselves
// contain underscores (e.g. BREAK_AND_ENTER_2019).
func splitColumn(name string) (crimeType string, year int, ok bool) {
	i := strings.LastIndex(name, "_")
	if i <= 0 || i == len(name)-1 {
		return "", 0, false
	}
	year, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return "", 0, false
	}
	return name[:i], year, true
}

// parseCount converts a raw cell to a non-negative count.
// filled is true when the cell was absent or unparseable and became zero.
func parseCount(cell string) (count int, filled bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f < 0 {
		return 0, true
	}
	return int(f + 0.5), false
}

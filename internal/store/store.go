package store

import (
	"fmt"
	"sort"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/timeseries"
)

// SeriesStore maps entity identity to its ordered yearly series.
//
// Two aggregations are materialized at build time from the same long-format
// rows:
//   - ScopeCityWide: one series per crime type, summed over neighbourhoods.
//   - ScopeNeighbourhood: one series per neighbourhood, summed over crime
//     types.
//
// The store is immutable after Build and safe for concurrent readers.
type SeriesStore struct {
	minYear int
	maxYear int

	citywide      map[string]*timeseries.Series
	neighbourhood map[string]*timeseries.Series
}

// Build constructs a SeriesStore from normalized observation rows covering
// the [minYear, maxYear] window.
func Build(rows []model.ObservationRow, minYear, maxYear int) (*SeriesStore, error) {
	if maxYear < minYear {
		return nil, fmt.Errorf("invalid year window [%d, %d]", minYear, maxYear)
	}
	span := maxYear - minYear + 1

	citySums := make(map[string][]float64)
	hoodSums := make(map[string][]float64)

	accumulate := func(sums map[string][]float64, key string, year, count int) {
		vals, ok := sums[key]
		if !ok {
			vals = make([]float64, span)
			sums[key] = vals
		}
		vals[year-minYear] += float64(count)
	}

	for _, row := range rows {
		if row.Year < minYear || row.Year > maxYear {
			continue
		}
		accumulate(citySums, row.CrimeType, row.Year, row.Count)
		accumulate(hoodSums, row.EntityKey, row.Year, row.Count)
	}

	s := &SeriesStore{
		minYear:       minYear,
		maxYear:       maxYear,
		citywide:      make(map[string]*timeseries.Series, len(citySums)),
		neighbourhood: make(map[string]*timeseries.Series, len(hoodSums)),
	}

	for key, vals := range citySums {
		series, err := timeseries.FromValues(minYear, vals)
		if err != nil {
			return nil, fmt.Errorf("citywide series %q: %w", key, err)
		}
		s.citywide[key] = series
	}
	for key, vals := range hoodSums {
		series, err := timeseries.FromValues(minYear, vals)
		if err != nil {
			return nil, fmt.Errorf("neighbourhood series %q: %w", key, err)
		}
		s.neighbourhood[key] = series
	}

	return s, nil
}

// Series returns the series for an entity key in the given scope.
// The returned series is an independent copy; callers cannot reach the
// store's backing data through it.
func (s *SeriesStore) Series(scope model.Scope, entityKey string) (*timeseries.Series, bool) {
	series, ok := s.scopeMap(scope)[entityKey]
	if !ok {
		return nil, false
	}
	// Series values are copied on construction from Values(), so this
	// rebuild costs one allocation and severs any aliasing.
	copySeries, err := timeseries.FromValues(series.StartYear(), series.Values())
	if err != nil {
		return nil, false
	}
	return copySeries, true
}

// EntityKeys returns the sorted entity keys for the given scope.
func (s *SeriesStore) EntityKeys(scope model.Scope) []string {
	m := s.scopeMap(scope)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// YearRange returns the inclusive year window the store covers.
func (s *SeriesStore) YearRange() (minYear, maxYear int) {
	return s.minYear, s.maxYear
}

func (s *SeriesStore) scopeMap(scope model.Scope) map[string]*timeseries.Series {
	if scope == model.ScopeCityWide {
		return s.citywide
	}
	return s.neighbourhood
}

package timeseries

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Series errors.
var (
	// ErrEmptySeries is returned when constructing a series with no points.
	ErrEmptySeries = errors.New("series must contain at least one observation")

	// ErrYearGap is returned when the years are not strictly increasing and
	// contiguous. The pipeline zero-fills absent counts during normalization,
	// so a gap here indicates a bug upstream, not missing data.
	ErrYearGap = errors.New("series years must be strictly increasing and contiguous")

	// ErrLengthMismatch is returned when years and values differ in length.
	ErrLengthMismatch = errors.New("years and values must have the same length")
)

// Series is an immutable annual time series for one entity.
type Series struct {
	startYear int
	values    []float64
}

// New creates a Series from years and values.
// Years must be strictly increasing and contiguous.
func New(years []int, values []float64) (*Series, error) {
	if len(years) != len(values) {
		return nil, ErrLengthMismatch
	}
	if len(years) == 0 {
		return nil, ErrEmptySeries
	}
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]+1 {
			return nil, fmt.Errorf("%w: %d followed by %d", ErrYearGap, years[i-1], years[i])
		}
	}

	vals := make([]float64, len(values))
	copy(vals, values)

	return &Series{startYear: years[0], values: vals}, nil
}

// FromValues creates a Series starting at startYear with one value per
// consecutive year.
func FromValues(startYear int, values []float64) (*Series, error) {
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}
	vals := make([]float64, len(values))
	copy(vals, values)
	return &Series{startYear: startYear, values: vals}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.values)
}

// StartYear returns the first year of the series.
func (s *Series) StartYear() int {
	return s.startYear
}

// EndYear returns the last year of the series.
func (s *Series) EndYear() int {
	return s.startYear + len(s.values) - 1
}

// Years returns a copy of the years in order.
func (s *Series) Years() []int {
	years := make([]int, len(s.values))
	for i := range years {
		years[i] = s.startYear + i
	}
	return years
}

// Values returns a copy of the values in year order.
func (s *Series) Values() []float64 {
	vals := make([]float64, len(s.values))
	copy(vals, s.values)
	return vals
}

// Value returns the value for the given year.
// The second return value is false when the year is outside the series.
func (s *Series) Value(year int) (float64, bool) {
	i := year - s.startYear
	if i < 0 || i >= len(s.values) {
		return 0, false
	}
	return s.values[i], true
}

// Mean returns the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	return stat.Mean(s.values, nil)
}

// Variance returns the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.values) < 2 {
		return 0
	}
	return stat.Variance(s.values, nil)
}

// IsConstant reports whether every value in the series is identical.
func (s *Series) IsConstant() bool {
	for _, v := range s.values[1:] {
		if v != s.values[0] {
			return false
		}
	}
	return true
}

// Last returns the final value of the series.
func (s *Series) Last() float64 {
	return s.values[len(s.values)-1]
}

// Diff returns the first difference of the series. The result starts one
// year later and is one observation shorter.
func (s *Series) Diff() *Series {
	if len(s.values) < 2 {
		return &Series{startYear: s.startYear + 1, values: nil}
	}
	diff := make([]float64, len(s.values)-1)
	for i := 1; i < len(s.values); i++ {
		diff[i-1] = s.values[i] - s.values[i-1]
	}
	return &Series{startYear: s.startYear + 1, values: diff}
}

// DiffN returns the series differenced n times.
func (s *Series) DiffN(n int) *Series {
	cur := s
	for i := 0; i < n; i++ {
		cur = cur.Diff()
	}
	return cur
}

// Through returns the prefix of the series ending at the given year
// (inclusive). The second return value is false when the year is before the
// series start.
func (s *Series) Through(year int) (*Series, bool) {
	n := year - s.startYear + 1
	if n <= 0 {
		return nil, false
	}
	if n > len(s.values) {
		n = len(s.values)
	}
	vals := make([]float64, n)
	copy(vals, s.values[:n])
	return &Series{startYear: s.startYear, values: vals}, true
}

// SplitAt partitions the series into a training prefix through cutoffYear
// (inclusive) and the remaining test suffix. The test series is nil when the
// cutoff is at or past the series end.
//
// This is the leakage boundary: callers hand the training series to order
// selection and fitting, and the test series only ever meets forecasts in
// metric computation.
func (s *Series) SplitAt(cutoffYear int) (train, test *Series, err error) {
	n := cutoffYear - s.startYear + 1
	if n <= 0 {
		return nil, nil, fmt.Errorf("cutoff year %d precedes series start %d", cutoffYear, s.startYear)
	}
	if n >= len(s.values) {
		train, _ = s.Through(s.EndYear())
		return train, nil, nil
	}

	trainVals := make([]float64, n)
	copy(trainVals, s.values[:n])
	testVals := make([]float64, len(s.values)-n)
	copy(testVals, s.values[n:])

	train = &Series{startYear: s.startYear, values: trainVals}
	test = &Series{startYear: cutoffYear + 1, values: testVals}
	return train, test, nil
}

package timeseries

import (
	"errors"
	"testing"
)

// TestNew tests series construction and its contiguity checks.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid series", func(t *testing.T) {
		t.Parallel()

		s, err := New([]int{2014, 2015, 2016}, []float64{10, 20, 30})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := s.StartYear(); got != 2014 {
			t.Errorf("StartYear = %d, want 2014", got)
		}
		if got := s.EndYear(); got != 2016 {
			t.Errorf("EndYear = %d, want 2016", got)
		}
		if got := s.Len(); got != 3 {
			t.Errorf("Len = %d, want 3", got)
		}
	})

	t.Run("rejects year gap", func(t *testing.T) {
		t.Parallel()

		_, err := New([]int{2014, 2016}, []float64{10, 20})
		if !errors.Is(err, ErrYearGap) {
			t.Errorf("expected ErrYearGap, got %v", err)
		}
	})

	t.Run("rejects length mismatch", func(t *testing.T) {
		t.Parallel()

		_, err := New([]int{2014, 2015}, []float64{10})
		if !errors.Is(err, ErrLengthMismatch) {
			t.Errorf("expected ErrLengthMismatch, got %v", err)
		}
	})

	t.Run("rejects empty series", func(t *testing.T) {
		t.Parallel()

		_, err := New(nil, nil)
		if !errors.Is(err, ErrEmptySeries) {
			t.Errorf("expected ErrEmptySeries, got %v", err)
		}
	})

	t.Run("copies input values", func(t *testing.T) {
		t.Parallel()

		values := []float64{10, 20, 30}
		s, err := New([]int{2014, 2015, 2016}, values)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		values[0] = 999
		if got, _ := s.Value(2014); got != 10 {
			t.Errorf("series aliased caller slice: Value(2014) = %v, want 10", got)
		}
	})
}

// TestSeriesValue tests year-indexed lookup.
func TestSeriesValue(t *testing.T) {
	t.Parallel()

	s, err := FromValues(2014, []float64{10, 20, 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		year   int
		want   float64
		wantOK bool
	}{
		{name: "first year", year: 2014, want: 10, wantOK: true},
		{name: "last year", year: 2016, want: 30, wantOK: true},
		{name: "before start", year: 2013, wantOK: false},
		{name: "after end", year: 2017, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := s.Value(tt.year)
			if ok != tt.wantOK {
				t.Fatalf("Value(%d) ok = %v, want %v", tt.year, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Value(%d) = %v, want %v", tt.year, got, tt.want)
			}
		})
	}
}

// TestSeriesSplitAt tests the train/test partition boundary.
func TestSeriesSplitAt(t *testing.T) {
	t.Parallel()

	t.Run("splits into disjoint train and test", func(t *testing.T) {
		t.Parallel()

		s, err := FromValues(2014, []float64{1, 2, 3, 4, 5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		train, test, err := s.SplitAt(2016)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if train.Len() != 3 || train.EndYear() != 2016 {
			t.Errorf("train = %d points ending %d, want 3 ending 2016", train.Len(), train.EndYear())
		}
		if test.Len() != 2 || test.StartYear() != 2017 {
			t.Errorf("test = %d points starting %d, want 2 starting 2017", test.Len(), test.StartYear())
		}

		// Together they must cover the original series exactly once.
		if train.Len()+test.Len() != s.Len() {
			t.Errorf("train + test = %d points, want %d", train.Len()+test.Len(), s.Len())
		}
	})

	t.Run("cutoff at series end leaves nil test", func(t *testing.T) {
		t.Parallel()

		s, err := FromValues(2014, []float64{1, 2, 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		train, test, err := s.SplitAt(2016)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if test != nil {
			t.Errorf("expected nil test series, got %d points", test.Len())
		}
		if train.Len() != 3 {
			t.Errorf("train = %d points, want 3", train.Len())
		}
	})

	t.Run("cutoff before start errors", func(t *testing.T) {
		t.Parallel()

		s, err := FromValues(2014, []float64{1, 2, 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, _, err := s.SplitAt(2013); err == nil {
			t.Error("expected error for cutoff before series start")
		}
	})
}

// TestSeriesDiff tests differencing and shape changes.
func TestSeriesDiff(t *testing.T) {
	t.Parallel()

	s, err := FromValues(2014, []float64{10, 15, 25, 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := s.Diff()
	if d.Len() != 3 {
		t.Fatalf("Diff len = %d, want 3", d.Len())
	}
	if d.StartYear() != 2015 {
		t.Errorf("Diff start year = %d, want 2015", d.StartYear())
	}
	want := []float64{5, 10, 15}
	for i, v := range d.Values() {
		if v != want[i] {
			t.Errorf("Diff values[%d] = %v, want %v", i, v, want[i])
		}
	}

	d2 := s.DiffN(2)
	if d2.Len() != 2 {
		t.Errorf("DiffN(2) len = %d, want 2", d2.Len())
	}
}

// TestSeriesIsConstant tests constant detection.
func TestSeriesIsConstant(t *testing.T) {
	t.Parallel()

	constant, err := FromValues(2014, []float64{7, 7, 7, 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !constant.IsConstant() {
		t.Error("expected constant series to report IsConstant")
	}

	varying, err := FromValues(2014, []float64{7, 7, 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if varying.IsConstant() {
		t.Error("expected varying series to report not constant")
	}
}

// TestSeriesThrough tests prefix extraction.
func TestSeriesThrough(t *testing.T) {
	t.Parallel()

	s, err := FromValues(2014, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prefix, ok := s.Through(2015)
	if !ok {
		t.Fatal("expected ok for year inside series")
	}
	if prefix.Len() != 2 || prefix.EndYear() != 2015 {
		t.Errorf("Through(2015) = %d points ending %d, want 2 ending 2015", prefix.Len(), prefix.EndYear())
	}

	full, ok := s.Through(2030)
	if !ok || full.Len() != 4 {
		t.Errorf("Through past end should return full series, got %d points ok=%v", full.Len(), ok)
	}

	if _, ok := s.Through(2010); ok {
		t.Error("expected not ok for year before series start")
	}
}

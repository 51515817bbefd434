package store

import (
	"testing"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
)

func testRows() []model.ObservationRow {
	var rows []model.ObservationRow
	add := func(entity, crimeType string, year, count int) {
		rows = append(rows, model.ObservationRow{
			Scope:     model.ScopeNeighbourhood,
			EntityKey: entity,
			CrimeType: crimeType,
			Year:      year,
			Count:     count,
		})
	}

	add("Agincourt", "ASSAULT", 2020, 100)
	add("Agincourt", "ASSAULT", 2021, 110)
	add("Agincourt", "ROBBERY", 2020, 10)
	add("Agincourt", "ROBBERY", 2021, 12)
	add("Malvern", "ASSAULT", 2020, 50)
	add("Malvern", "ASSAULT", 2021, 55)
	add("Malvern", "ROBBERY", 2020, 5)
	add("Malvern", "ROBBERY", 2021, 6)
	return rows
}

// TestBuild tests the two aggregations built from one long table.
func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("citywide sums over neighbourhoods per crime type", func(t *testing.T) {
		t.Parallel()

		s, err := Build(testRows(), 2020, 2021)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		series, ok := s.Series(model.ScopeCityWide, "ASSAULT")
		if !ok {
			t.Fatal("expected ASSAULT citywide series")
		}
		if v, _ := series.Value(2020); v != 150 {
			t.Errorf("ASSAULT 2020 = %v, want 150", v)
		}
		if v, _ := series.Value(2021); v != 165 {
			t.Errorf("ASSAULT 2021 = %v, want 165", v)
		}
	})

	t.Run("neighbourhood sums over crime types", func(t *testing.T) {
		t.Parallel()

		s, err := Build(testRows(), 2020, 2021)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		series, ok := s.Series(model.ScopeNeighbourhood, "Malvern")
		if !ok {
			t.Fatal("expected Malvern series")
		}
		if v, _ := series.Value(2020); v != 55 {
			t.Errorf("Malvern 2020 = %v, want 55", v)
		}
		if v, _ := series.Value(2021); v != 61 {
			t.Errorf("Malvern 2021 = %v, want 61", v)
		}
	})

	t.Run("out-of-window rows are ignored", func(t *testing.T) {
		t.Parallel()

		rows := testRows()
		rows = append(rows, model.ObservationRow{
			EntityKey: "Agincourt", CrimeType: "ASSAULT", Year: 2019, Count: 999,
		})

		s, err := Build(rows, 2020, 2021)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		series, _ := s.Series(model.ScopeNeighbourhood, "Agincourt")
		if series.StartYear() != 2020 {
			t.Errorf("start year = %d, want 2020", series.StartYear())
		}
	})

	t.Run("rejects inverted year window", func(t *testing.T) {
		t.Parallel()

		if _, err := Build(testRows(), 2022, 2020); err == nil {
			t.Error("expected error for inverted year window")
		}
	})
}

// TestSeriesIsolation tests that one entity's data can never reach another
// entity through the store, and that returned series do not alias store
// state.
func TestSeriesIsolation(t *testing.T) {
	t.Parallel()

	t.Run("corrupting entity B leaves entity A unchanged", func(t *testing.T) {
		t.Parallel()

		clean, err := Build(testRows(), 2020, 2021)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		corrupted := testRows()
		for i := range corrupted {
			if corrupted[i].EntityKey == "Malvern" {
				corrupted[i].Count = 99999
			}
		}
		dirty, err := Build(corrupted, 2020, 2021)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cleanA, _ := clean.Series(model.ScopeNeighbourhood, "Agincourt")
		dirtyA, _ := dirty.Series(model.ScopeNeighbourhood, "Agincourt")
		for _, year := range cleanA.Years() {
			cv, _ := cleanA.Value(year)
			dv, _ := dirtyA.Value(year)
			if cv != dv {
				t.Errorf("Agincourt %d changed from %v to %v when Malvern was corrupted", year, cv, dv)
			}
		}
	})

	t.Run("repeated lookups return equal independent series", func(t *testing.T) {
		t.Parallel()

		s, err := Build(testRows(), 2020, 2021)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		first, _ := s.Series(model.ScopeNeighbourhood, "Agincourt")
		second, _ := s.Series(model.ScopeNeighbourhood, "Agincourt")
		if first == second {
			t.Error("expected independent series copies, got the same pointer")
		}
		for _, year := range first.Years() {
			fv, _ := first.Value(year)
			sv, _ := second.Value(year)
			if fv != sv {
				t.Errorf("copies disagree at %d: %v vs %v", year, fv, sv)
			}
		}
	})

	t.Run("unknown entity is not found", func(t *testing.T) {
		t.Parallel()

		s, err := Build(testRows(), 2020, 2021)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := s.Series(model.ScopeNeighbourhood, "Nowhere"); ok {
			t.Error("expected not found for unknown entity")
		}
	})
}

// TestEntityKeys tests deterministic key ordering.
func TestEntityKeys(t *testing.T) {
	t.Parallel()

	s, err := Build(testRows(), 2020, 2021)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := s.EntityKeys(model.ScopeNeighbourhood)
	want := []string{"Agincourt", "Malvern"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}

	cityKeys := s.EntityKeys(model.ScopeCityWide)
	if len(cityKeys) != 2 || cityKeys[0] != "ASSAULT" || cityKeys[1] != "ROBBERY" {
		t.Errorf("citywide keys = %v, want [ASSAULT ROBBERY]", cityKeys)
	}
}

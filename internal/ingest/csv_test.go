package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestReadCSV tests stream parsing into a raw table.
func TestReadCSV(t *testing.T) {
	t.Parallel()

	t.Run("reads header and rows", func(t *testing.T) {
		t.Parallel()

		input := "HOOD_ID,AREA_NAME,ASSAULT_2020\n1,Agincourt,120\n2,Malvern,80\n"
		table, err := ReadCSV(strings.NewReader(input))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if table.Len() != 2 {
			t.Errorf("Len = %d, want 2", table.Len())
		}
		if !table.HasColumn("ASSAULT_2020") {
			t.Error("expected ASSAULT_2020 column")
		}
		if v, ok := table.Cell(1, "AREA_NAME"); !ok || v != "Malvern" {
			t.Errorf("Cell(1, AREA_NAME) = %q ok=%v, want Malvern", v, ok)
		}
	})

	t.Run("trims header whitespace", func(t *testing.T) {
		t.Parallel()

		input := "HOOD_ID , AREA_NAME\n1,Agincourt\n"
		table, err := ReadCSV(strings.NewReader(input))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !table.HasColumn("HOOD_ID") || !table.HasColumn("AREA_NAME") {
			t.Errorf("columns = %v, want trimmed names", table.Columns())
		}
	})

	t.Run("ragged rows read as empty cells", func(t *testing.T) {
		t.Parallel()

		input := "HOOD_ID,AREA_NAME,ASSAULT_2020\n1,Agincourt\n"
		table, err := ReadCSV(strings.NewReader(input))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v, ok := table.Cell(0, "ASSAULT_2020"); ok && v != "" {
			t.Errorf("short row cell = %q, want empty", v)
		}
	})

	t.Run("empty input errors", func(t *testing.T) {
		t.Parallel()

		_, err := ReadCSV(strings.NewReader(""))
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})
}

// TestLoadCSV tests file-backed loading.
func TestLoadCSV(t *testing.T) {
	t.Parallel()

	t.Run("loads existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "crime.csv")
		content := "HOOD_ID,AREA_NAME,ASSAULT_2020\n1,Agincourt,120\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}

		table, err := LoadCSV(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.Len() != 1 {
			t.Errorf("Len = %d, want 1", table.Len())
		}
	})

	t.Run("missing file errors", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

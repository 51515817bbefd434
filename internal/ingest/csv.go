package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/model"
)

// ErrEmptyInput is returned when the CSV has no header row.
var ErrEmptyInput = errors.New("input CSV is empty")

// LoadCSV reads a wide-format CSV file into a RawTable.
func LoadCSV(path string) (*model.RawTable, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return table, nil
}

// ReadCSV reads a wide-format CSV stream into a RawTable.
// Rows with fewer fields than the header are padded with empty cells; the
// absent values become zeros during normalization.
func ReadCSV(r io.Reader) (*model.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are padded below
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		rows = append(rows, record)
	}

	return model.NewRawTable(header, rows), nil
}

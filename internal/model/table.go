package model

// RawTable is the wide-format input table: one row per neighbourhood, one
// column per crime-type/year combination plus identifying columns.
//
// RawTable is the source of truth before the reshape. It is immutable once
// loaded: constructors copy their inputs and accessors return copies, so no
// later pipeline stage can mutate what another stage observed.
type RawTable struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewRawTable builds a RawTable from a header and data rows.
// Rows shorter than the header are padded with empty cells; absent values in
// the source stay absent here and become zeros only during normalization.
func NewRawTable(columns []string, rows [][]string) *RawTable {
	cols := make([]string, len(columns))
	copy(cols, columns)

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}

	copied := make([][]string, len(rows))
	for i, row := range rows {
		r := make([]string, len(cols))
		copy(r, row)
		copied[i] = r
	}

	return &RawTable{columns: cols, index: index, rows: copied}
}

// Columns returns a copy of the column names in header order.
func (t *RawTable) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// HasColumn reports whether the table has a column with the given name.
func (t *RawTable) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	return len(t.rows)
}

// Cell returns the value at the given row for the named column.
// The second return value is false when the column does not exist.
func (t *RawTable) Cell(row int, column string) (string, bool) {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return "", false
	}
	return t.rows[row][i], true
}

// Package records persists tables of heterogeneous rows as SQLite databases.
package records

import (
	"fmt"
	"slices"
)

// Table is a list of rows sharing named columns. Cells hold int64, float64, string, []byte or
// nil.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{
		Columns: slices.Clone(columns),
		Rows:    make([][]any, 0),
	}
}

// Append adds a row. An int cell is stored as int64.
func (t *Table) Append(values ...any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, want %d", len(values), len(t.Columns))
	}
	row := make([]any, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case int:
			row[i] = int64(v)
		case int64, float64, string, nil:
			row[i] = v
		case []byte:
			row[i] = slices.Clone(v)
		default:
			return fmt.Errorf("column %q: unsupported value type %T", t.Columns[i], v)
		}
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Package sheets writes tabular run output to named spreadsheet sheets.
// Writes are whole-sheet overwrites: downstream consumers depend on exact
// column names and order, never on leftovers from earlier runs.
package sheets

import "context"

// Table is a header row plus data rows. Cells may be any scalar the backend
// can render (string, int, float64, ...).
type Table struct {
	Header []string
	Rows   [][]any
}

func (t Table) Len() int {
	return len(t.Rows)
}

func (t *Table) Append(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

// Writer replaces the contents of a named sheet with a table, creating the
// sheet when it does not exist yet.
type Writer interface {
	WriteTable(ctx context.Context, sheet string, table Table) error
}

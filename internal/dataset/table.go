package dataset

import (
	"fmt"
	"strings"
)

// Shape is a table's row and column count.
type Shape struct {
	Rows int
	Cols int
}

// Table is an ordered-column, rectangular block of cells. Rows always have
// exactly len(Columns) cells; AppendRow pads or truncates to enforce that.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// NewTable creates an empty table with the given column names.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Shape returns the current row and column counts.
func (t *Table) Shape() Shape {
	return Shape{Rows: len(t.Rows), Cols: len(t.Columns)}
}

// IsEmpty reports whether the table holds no data rows.
func (t *Table) IsEmpty() bool { return len(t.Rows) == 0 }

// AppendRow adds a row, padding missing trailing cells with null and
// truncating extras so the table stays rectangular.
func (t *Table) AppendRow(cells ...Value) {
	row := make([]Value, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the cells of the named column in row order.
func (t *Table) Column(name string) ([]Value, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	col := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[idx]
	}
	return col, nil
}

// SetColumn replaces the cells of the named column.
func (t *Table) SetColumn(name string, cells []Value) error {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return fmt.Errorf("column %q not found", name)
	}
	if len(cells) != len(t.Rows) {
		return fmt.Errorf("column %q: %d cells for %d rows", name, len(cells), len(t.Rows))
	}
	for i := range t.Rows {
		t.Rows[i][idx] = cells[i]
	}
	return nil
}

// AppendColumn adds a new column filled by fill(row index).
func (t *Table) AppendColumn(name string, fill func(row int) Value) {
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], fill(i))
	}
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]Value, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]Value(nil), row...)
	}
	return out
}

// Select projects the table onto exactly the given columns, in the given
// order. It fails if any column is missing.
func (t *Table) Select(columns []string) (*Table, error) {
	indexes := make([]int, len(columns))
	for i, name := range columns {
		idx := t.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("column %q not found", name)
		}
		indexes[i] = idx
	}
	out := NewTable(columns...)
	for _, row := range t.Rows {
		cells := make([]Value, len(indexes))
		for i, idx := range indexes {
			cells[i] = row[idx]
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

// DropColumns removes the columns at the given indexes.
func (t *Table) DropColumns(indexes map[int]bool) {
	if len(indexes) == 0 {
		return
	}
	var keep []int
	for i := range t.Columns {
		if !indexes[i] {
			keep = append(keep, i)
		}
	}
	cols := make([]string, len(keep))
	for i, idx := range keep {
		cols[i] = t.Columns[idx]
	}
	for r, row := range t.Rows {
		cells := make([]Value, len(keep))
		for i, idx := range keep {
			cells[i] = row[idx]
		}
		t.Rows[r] = cells
	}
	t.Columns = cols
}

// DropRows removes the rows at the given indexes.
func (t *Table) DropRows(indexes map[int]bool) {
	if len(indexes) == 0 {
		return
	}
	kept := t.Rows[:0]
	for i, row := range t.Rows {
		if !indexes[i] {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
}

// CheckRectangular verifies every row has exactly one cell per column. Stages
// rely on this invariant; a violation means the table was corrupted upstream.
func (t *Table) CheckRectangular() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}

// TotalCells returns rows times columns.
func (t *Table) TotalCells() int { return len(t.Rows) * len(t.Columns) }

// NullCells counts null cells over the whole table.
func (t *Table) NullCells() int {
	n := 0
	for _, row := range t.Rows {
		for _, v := range row {
			if v.IsNull() {
				n++
			}
		}
	}
	return n
}

// DuplicateRows counts rows that exactly duplicate an earlier row. The first
// occurrence is not counted.
func (t *Table) DuplicateRows() int {
	seen := make(map[string]bool, len(t.Rows))
	dups := 0
	for _, row := range t.Rows {
		k := rowKey(row)
		if seen[k] {
			dups++
		} else {
			seen[k] = true
		}
	}
	return dups
}

// ColumnKind infers a column's type: KindNumber or KindDate when every
// non-null cell agrees on that kind, KindString otherwise, and KindNull for a
// column with no non-null cells.
func (t *Table) ColumnKind(idx int) Kind {
	kind := KindNull
	for _, row := range t.Rows {
		v := row[idx]
		if v.IsNull() {
			continue
		}
		if kind == KindNull {
			kind = v.Kind()
			continue
		}
		if v.Kind() != kind {
			return KindString
		}
	}
	return kind
}

// ColumnNonNull counts the non-null cells in the column at idx.
func (t *Table) ColumnNonNull(idx int) int {
	n := 0
	for _, row := range t.Rows {
		if !row[idx].IsNull() {
			n++
		}
	}
	return n
}

// ColumnDistinct counts distinct non-null values in the column at idx.
func (t *Table) ColumnDistinct(idx int) int {
	seen := make(map[string]bool)
	for _, row := range t.Rows {
		if v := row[idx]; !v.IsNull() {
			seen[v.key()] = true
		}
	}
	return len(seen)
}

func rowKey(row []Value) string {
	var b strings.Builder
	for _, v := range row {
		b.WriteString(v.key())
		b.WriteByte('\x1f')
	}
	return b.String()
}

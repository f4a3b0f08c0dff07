package dataset

// SourceCheck is a read-only diagnostic of one raw sheet. It never mutates
// the table it describes.
type SourceCheck struct {
	IsEmpty       bool              `yaml:"is_empty"`
	DuplicateRows int               `yaml:"duplicate_rows"`
	NullPercent   float64           `yaml:"null_percent"`
	ColumnTypes   map[string]string `yaml:"column_types"`
}

// Check inspects a table and reports emptiness, exact-duplicate rows, the
// percentage of null cells over all cells, and the inferred type per column.
func Check(t *Table) SourceCheck {
	check := SourceCheck{
		IsEmpty:     t.IsEmpty(),
		ColumnTypes: make(map[string]string, len(t.Columns)),
	}
	check.DuplicateRows = t.DuplicateRows()
	if total := t.TotalCells(); total > 0 {
		check.NullPercent = float64(t.NullCells()) / float64(total) * 100
	}
	for i, name := range t.Columns {
		check.ColumnTypes[name] = t.ColumnKind(i).String()
	}
	return check
}

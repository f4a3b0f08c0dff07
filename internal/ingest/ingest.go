// Package ingest parses a spreadsheet workbook from a byte buffer into raw
// tables, one per sheet, exactly as extracted. It performs no cleaning; the
// first row of each sheet is taken as the header.
package ingest

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"salesetl/internal/dataset"
)

// Sheet is one raw sheet in workbook order.
type Sheet struct {
	Name  string
	Table *dataset.Table
}

// Parse reads every sheet of the workbook. It returns an error, and no
// sheets, if the buffer is not a readable workbook; a caller can therefore
// never observe partial extraction state.
func Parse(data []byte, logger *slog.Logger) ([]Sheet, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		table := buildTable(rows)
		shape := table.Shape()
		logger.Info("extracted sheet",
			slog.String("sheet", name),
			slog.Int("rows", shape.Rows),
			slog.Int("cols", shape.Cols))
		sheets = append(sheets, Sheet{Name: name, Table: table})
	}
	return sheets, nil
}

// buildTable converts raw sheet rows into a rectangular table. The header
// width is the widest row; unnamed header cells get positional names the way
// spreadsheet readers conventionally label them. Empty cells are null.
func buildTable(rows [][]string) *dataset.Table {
	if len(rows) == 0 {
		return dataset.NewTable()
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	columns := make([]string, width)
	for i := range columns {
		if i < len(rows[0]) && rows[0][i] != "" {
			columns[i] = rows[0][i]
		} else {
			columns[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}

	table := dataset.NewTable(columns...)
	for _, row := range rows[1:] {
		cells := make([]dataset.Value, width)
		for i := 0; i < width; i++ {
			if i < len(row) && row[i] != "" {
				cells[i] = dataset.String(row[i])
			} else {
				cells[i] = dataset.Null()
			}
		}
		table.AppendRow(cells...)
	}
	return table
}

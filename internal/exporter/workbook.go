package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"salesetl/internal/dataset"
	"salesetl/internal/unify"
)

const (
	unifiedSheetName = "UnifiedModel"
	summarySheetName = "Summary"
)

// WriteWorkbook writes the unified table as a workbook with a summary sheet
// describing its provenance.
func WriteWorkbook(w io.Writer, res *unify.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), unifiedSheetName)
	if err := writeTable(f, unifiedSheetName, res.Table); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheetName); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Created At", res.CreatedAt.Format("2006-01-02 15:04:05")},
		{"Source Sheets", strings.Join(res.SourceSheets, ", ")},
		{"Common Columns", strings.Join(res.CommonColumns, ", ")},
		{"Total Records", len(res.Table.Rows)},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, t *dataset.Table) error {
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			switch v.Kind() {
			case dataset.KindNumber:
				cells[i] = v.Float()
			case dataset.KindDate:
				cells[i] = v.Time()
			case dataset.KindString:
				cells[i] = v.Text()
			default:
				cells[i] = nil
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}
	return nil
}

package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"salesetl/internal/dataset"
)

// CSVOptions configures delimited-text output.
type CSVOptions struct {
	// BOMPrefix writes a UTF-8 BOM so spreadsheet tools detect the
	// encoding; the exported data carries non-ASCII column names.
	BOMPrefix bool
}

// WriteCSV writes the table's header and rows as CSV. Null cells render as
// empty fields.
func WriteCSV(w io.Writer, t *dataset.Table, opts CSVOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, v := range row {
			record[j] = v.Format()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

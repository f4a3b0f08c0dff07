// Package cleaning implements the standardization stage: column-name
// normalization, empty row/column drops, and type coercion for quantity,
// date, and text columns. It nulls bad values but never removes data rows.
package cleaning

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"salesetl/internal/config"
	"salesetl/internal/dataset"
	"salesetl/internal/lineage"
)

// textNullMarkers are literal strings normalized to null in text columns.
var textNullMarkers = map[string]bool{"nan": true, "None": true, "": true}

// Cleaner applies the standardization stage to one sheet at a time.
type Cleaner struct {
	classifier *Classifier
	log        *slog.Logger
}

// New creates a Cleaner for the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{classifier: NewClassifier(cfg.Columns), log: logger}
}

// Classifier exposes the column classifier so later stages share the same
// ordered rule table.
func (c *Cleaner) Classifier() *Classifier { return c.classifier }

// Clean standardizes the table in place and records the column renaming in
// the sheet's lineage. The table must be rectangular; a violation aborts the
// sheet so it can be excluded from the cleaned layer.
func (c *Cleaner) Clean(t *dataset.Table, rec *lineage.Record) error {
	if err := t.CheckRectangular(); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}

	before := append([]string(nil), t.Columns...)
	c.normalizeColumnNames(t)
	rec.AppendChanges(lineage.StepColumnNameCleaning, before, t.Columns)

	c.dropEmptyColumns(t)
	c.dropEmptyRows(t)
	c.standardizeTypes(t)
	return nil
}

// normalizeColumnNames trims each name and removes embedded newlines,
// carriage returns, and internal whitespace runs.
func (c *Cleaner) normalizeColumnNames(t *dataset.Table) {
	for i, name := range t.Columns {
		t.Columns[i] = strings.Join(strings.Fields(name), "")
	}
}

func (c *Cleaner) dropEmptyColumns(t *dataset.Table) {
	drop := make(map[int]bool)
	for idx := range t.Columns {
		empty := true
		for _, row := range t.Rows {
			if !row[idx].IsNull() {
				empty = false
				break
			}
		}
		if empty {
			drop[idx] = true
		}
	}
	t.DropColumns(drop)
}

func (c *Cleaner) dropEmptyRows(t *dataset.Table) {
	drop := make(map[int]bool)
	for i, row := range t.Rows {
		empty := true
		for _, v := range row {
			if !v.IsNull() {
				empty = false
				break
			}
		}
		if empty {
			drop[i] = true
		}
	}
	t.DropRows(drop)
}

// standardizeTypes coerces each column according to its class: quantities to
// numeric with unparsable values as zero, dates through the two-strategy
// fallback chain, and remaining text trimmed with null markers normalized.
func (c *Cleaner) standardizeTypes(t *dataset.Table) {
	for idx, name := range t.Columns {
		switch c.classifier.Classify(name) {
		case ClassQuantity:
			c.coerceQuantity(t, idx)
		case ClassDate:
			c.coerceDate(t, idx, name)
		default:
			c.normalizeText(t, idx)
		}
	}
}

// coerceQuantity turns every cell into a number. Unparsable and missing
// values become zero, not null: quantities are assumed present but malformed.
func (c *Cleaner) coerceQuantity(t *dataset.Table, idx int) {
	for _, row := range t.Rows {
		v := row[idx]
		if v.Kind() == dataset.KindNumber {
			continue
		}
		parsed := 0.0
		if v.Kind() == dataset.KindString {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64); err == nil {
				parsed = f
			}
		}
		row[idx] = dataset.Number(parsed)
	}
}

func (c *Cleaner) coerceDate(t *dataset.Table, idx int, name string) {
	col := make([]dataset.Value, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[idx]
	}
	cells, strategy, ok := standardizeDates(col)
	if !ok {
		// Neither strategy produced a single date. Leave the column as
		// ingested so the raw values stay visible downstream.
		c.log.Debug("date column left unparsed", slog.String("column", name))
		return
	}
	c.log.Debug("date column standardized",
		slog.String("column", name),
		slog.String("strategy", strategy))
	for i, row := range t.Rows {
		row[idx] = cells[i]
	}
}

// normalizeText trims surrounding whitespace and normalizes the literal
// strings "nan", "None", and empty string to null.
func (c *Cleaner) normalizeText(t *dataset.Table, idx int) {
	for _, row := range t.Rows {
		v := row[idx]
		if v.Kind() != dataset.KindString {
			continue
		}
		trimmed := strings.TrimSpace(v.Text())
		if textNullMarkers[trimmed] {
			row[idx] = dataset.Null()
		} else {
			row[idx] = dataset.String(trimmed)
		}
	}
}

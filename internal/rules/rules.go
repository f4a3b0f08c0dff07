// Package rules applies the configured business constraints to a
// standardized sheet. Violations null the offending cell, never the row; the
// count of affected records is appended to the sheet's lineage.
package rules

import (
	"fmt"
	"log/slog"

	"salesetl/internal/cleaning"
	"salesetl/internal/config"
	"salesetl/internal/dataset"
	"salesetl/internal/lineage"
)

// Engine validates sheets against the configured business rules.
type Engine struct {
	cfg        *config.Config
	classifier *cleaning.Classifier
	log        *slog.Logger
}

// New creates an Engine sharing the cleaning stage's column classifier.
func New(cfg *config.Config, classifier *cleaning.Classifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, classifier: classifier, log: logger}
}

// Apply runs the quantity-floor and date-range rules in place and records
// one business-rules lineage event, with a summary per triggered rule.
func (e *Engine) Apply(t *dataset.Table, rec *lineage.Record) error {
	var applied []string

	if msg := e.applyQuantityFloor(t); msg != "" {
		applied = append(applied, msg)
	}
	dateMsgs, err := e.applyDateWindow(t)
	if err != nil {
		return err
	}
	applied = append(applied, dateMsgs...)

	rec.AppendRules(lineage.StepBusinessRules, applied)
	return nil
}

// applyQuantityFloor nulls values below the configured minimum in the first
// quantity column.
func (e *Engine) applyQuantityFloor(t *dataset.Table) string {
	qtyCols := e.classifier.Columns(t, cleaning.ClassQuantity)
	if len(qtyCols) == 0 {
		return ""
	}
	idx := t.ColumnIndex(qtyCols[0])
	affected := 0
	for _, row := range t.Rows {
		v := row[idx]
		if v.Kind() == dataset.KindNumber && v.Float() < e.cfg.BusinessRules.MinOrderQty {
			row[idx] = dataset.Null()
			affected++
		}
	}
	if affected == 0 {
		return ""
	}
	e.log.Debug("quantity floor applied",
		slog.String("column", qtyCols[0]),
		slog.Int("affected", affected))
	return fmt.Sprintf("Nulled %d records with invalid quantity in %s", affected, qtyCols[0])
}

// applyDateWindow nulls dates outside the configured valid window in every
// date column already standardized to date type.
func (e *Engine) applyDateWindow(t *dataset.Table) ([]string, error) {
	start, end, err := e.cfg.DateWindow()
	if err != nil {
		return nil, err
	}
	var msgs []string
	for _, name := range e.classifier.Columns(t, cleaning.ClassDate) {
		idx := t.ColumnIndex(name)
		if t.ColumnKind(idx) != dataset.KindDate {
			continue
		}
		affected := 0
		for _, row := range t.Rows {
			v := row[idx]
			if v.Kind() != dataset.KindDate {
				continue
			}
			if v.Time().Before(start) || v.Time().After(end) {
				row[idx] = dataset.Null()
				affected++
			}
		}
		if affected > 0 {
			e.log.Debug("date window applied",
				slog.String("column", name),
				slog.Int("affected", affected))
			msgs = append(msgs, fmt.Sprintf("Nulled %d records with invalid dates in %s", affected, name))
		}
	}
	return msgs, nil
}

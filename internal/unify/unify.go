// Package unify builds the gold layer: it reconciles the cleaned sheets to
// their common column set and concatenates them into one table. Explanation
// and product-reference sheets never contribute.
package unify

import (
	"log/slog"
	"time"

	"salesetl/internal/dataset"
	"salesetl/internal/enrich"
)

// Input is one cleaned sheet offered for unification, in processing order.
type Input struct {
	Name  string
	Table *dataset.Table
}

// Result is the unified table plus its provenance. DroppedColumns lists, per
// contributing sheet, the sheet-specific columns the intersection discarded.
type Result struct {
	Table          *dataset.Table
	CreatedAt      time.Time
	SourceSheets   []string
	CommonColumns  []string
	DroppedColumns map[string][]string
}

// Unify computes the intersection of column sets across eligible sheets and
// concatenates their projections in input order. It returns nil when no
// eligible sheet exists or the intersection is empty; that is a valid
// degenerate outcome, not an error.
func Unify(inputs []Input, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var eligible []Input
	for _, in := range inputs {
		if enrich.IsExplanationSheet(in.Name) || enrich.IsProductSheet(in.Name) {
			continue
		}
		eligible = append(eligible, in)
	}
	if len(eligible) == 0 {
		logger.Info("unification skipped, no eligible sheets")
		return nil, nil
	}

	common := commonColumns(eligible)
	if len(common) == 0 {
		logger.Info("unification skipped, empty column intersection")
		return nil, nil
	}

	res := &Result{
		Table:          dataset.NewTable(common...),
		CreatedAt:      time.Now(),
		CommonColumns:  common,
		DroppedColumns: make(map[string][]string),
	}
	commonSet := make(map[string]bool, len(common))
	for _, c := range common {
		commonSet[c] = true
	}

	for _, in := range eligible {
		projected, err := in.Table.Select(common)
		if err != nil {
			return nil, err
		}
		res.Table.Rows = append(res.Table.Rows, projected.Rows...)
		res.SourceSheets = append(res.SourceSheets, in.Name)
		for _, col := range in.Table.Columns {
			if !commonSet[col] {
				res.DroppedColumns[in.Name] = append(res.DroppedColumns[in.Name], col)
			}
		}
	}

	logger.Info("unified data model created",
		slog.Int("records", len(res.Table.Rows)),
		slog.Int("columns", len(common)),
		slog.Int("sheets", len(res.SourceSheets)))
	return res, nil
}

// commonColumns intersects the column sets, keeping the first eligible
// sheet's column order for determinism.
func commonColumns(eligible []Input) []string {
	counts := make(map[string]int)
	for _, in := range eligible {
		seen := make(map[string]bool)
		for _, col := range in.Table.Columns {
			if !seen[col] {
				seen[col] = true
				counts[col]++
			}
		}
	}
	var common []string
	added := make(map[string]bool)
	for _, col := range eligible[0].Table.Columns {
		if counts[col] == len(eligible) && !added[col] {
			added[col] = true
			common = append(common, col)
		}
	}
	return common
}

// Package quality scores cleaned sheets on three dimensions: completeness
// (non-null cells over all cells), validity (mean non-null ratio of numeric
// and date columns), and consistency (one minus the duplicate-row rate).
package quality

import (
	"time"

	"salesetl/internal/cleaning"
	"salesetl/internal/config"
	"salesetl/internal/dataset"
)

// Report is the quality assessment of one cleaned sheet. Scores are always
// in [0, 1]. A report is replaced wholesale on reassessment, never patched.
type Report struct {
	Completeness float64   `yaml:"completeness"`
	Validity     float64   `yaml:"validity"`
	Consistency  float64   `yaml:"consistency"`
	TotalRecords int       `yaml:"total_records"`
	TotalColumns int       `yaml:"total_columns"`
	AssessedAt   time.Time `yaml:"assessment_time"`

	// Threshold flags against the configured pass marks.
	MeetsCompleteness bool `yaml:"meets_completeness"`
	MeetsValidity     bool `yaml:"meets_validity"`
	MeetsConsistency  bool `yaml:"meets_consistency"`
}

// Assess computes a sheet's quality report. The classifier identifies
// quantity and date columns so fully-nulled coerced columns still count
// toward validity.
func Assess(t *dataset.Table, classifier *cleaning.Classifier, thresholds config.QualityThresholds) Report {
	shape := t.Shape()
	rep := Report{
		TotalRecords: shape.Rows,
		TotalColumns: shape.Cols,
		AssessedAt:   time.Now(),
	}

	if total := t.TotalCells(); total > 0 {
		rep.Completeness = float64(total-t.NullCells()) / float64(total)
	}
	rep.Validity = validity(t, classifier)
	rep.Consistency = consistency(t)

	rep.MeetsCompleteness = rep.Completeness >= thresholds.Completeness
	rep.MeetsValidity = rep.Validity >= thresholds.Validity
	rep.MeetsConsistency = rep.Consistency >= thresholds.Consistency
	return rep
}

// validity averages the non-null ratio over typed columns. A column is typed
// when its cells standardized to number or date, or when it is classified as
// a quantity or date column (coerced columns stay typed even if every value
// was later nulled by a rule). No typed columns means vacuously valid.
func validity(t *dataset.Table, classifier *cleaning.Classifier) float64 {
	if len(t.Rows) == 0 {
		return 1.0
	}
	var scores []float64
	for idx, name := range t.Columns {
		kind := t.ColumnKind(idx)
		typed := kind == dataset.KindNumber || kind == dataset.KindDate
		if !typed && kind == dataset.KindNull {
			class := classifier.Classify(name)
			typed = class == cleaning.ClassQuantity || class == cleaning.ClassDate
		}
		if !typed {
			continue
		}
		nonNull := 0
		for _, row := range t.Rows {
			if !row[idx].IsNull() {
				nonNull++
			}
		}
		scores = append(scores, float64(nonNull)/float64(len(t.Rows)))
	}
	if len(scores) == 0 {
		return 1.0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// consistency is 1 minus the exact-duplicate row rate, neutral for an empty
// sheet.
func consistency(t *dataset.Table) float64 {
	if len(t.Rows) == 0 {
		return 1.0
	}
	return 1.0 - float64(t.DuplicateRows())/float64(len(t.Rows))
}

// Package enrich derives business context for a cleaned sheet: the market
// segment implied by the sheet's name, calendar breakdowns of its first date
// column, and processing metadata stamped on every row. It also classifies
// sheet kinds (documentation, product reference) that the pipeline excludes.
package enrich

import (
	"log/slog"
	"strings"
	"time"

	"salesetl/internal/cleaning"
	"salesetl/internal/dataset"
)

// Column names added by enrichment, matching the source spreadsheets'
// bilingual naming.
const (
	ColSegment     = "市场类型"
	ColYear        = "年份"
	ColMonth       = "月份"
	ColQuarter     = "季度"
	ColWeekday     = "星期几"
	ColProcessedAt = "数据处理时间"
	ColSource      = "数据来源"
)

// DefaultSegment labels sheets matching no recognized keyword.
const DefaultSegment = "其他市场"

// SegmentRule maps sheet-name keywords to a market-segment label.
type SegmentRule struct {
	Keywords []string
	Label    string
}

// segmentRules is evaluated in fixed priority order; the first rule with any
// matching keyword wins. The order is part of the business contract: "CSO"
// and "DSO" share a label and are checked after "Retail".
var segmentRules = []SegmentRule{
	{Keywords: []string{"RX"}, Label: "RX处方药市场"},
	{Keywords: []string{"电子商务"}, Label: "电子商务市场"},
	{Keywords: []string{"Device"}, Label: "医疗器械市场"},
	{Keywords: []string{"Retail"}, Label: "零售市场"},
	{Keywords: []string{"CSO", "DSO"}, Label: "CSO&DSO市场"},
	{Keywords: []string{"非目标"}, Label: "非目标市场"},
}

// SegmentRules returns the ordered keyword table so tests can enumerate it.
func SegmentRules() []SegmentRule {
	return append([]SegmentRule(nil), segmentRules...)
}

// SegmentFor classifies a sheet name into a market-segment label.
func SegmentFor(sheetName string) string {
	for _, rule := range segmentRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(sheetName, kw) {
				return rule.Label
			}
		}
	}
	return DefaultSegment
}

// Sheet-kind markers. Explanation sheets are documentation, not data, and
// are excluded from all ETL stages; product sheets are reference tables
// excluded from unification only.
const (
	explanationMarker = "说明"
	productMarker     = "产品"
)

// IsExplanationSheet reports whether the sheet is a documentation sheet.
func IsExplanationSheet(name string) bool {
	return strings.Contains(name, explanationMarker)
}

// IsProductSheet reports whether the sheet is a product-reference sheet.
func IsProductSheet(name string) bool {
	return strings.Contains(name, productMarker)
}

// Enricher applies the enrichment stage.
type Enricher struct {
	classifier *cleaning.Classifier
	log        *slog.Logger
}

// New creates an Enricher sharing the cleaning stage's column classifier.
func New(classifier *cleaning.Classifier, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{classifier: classifier, log: logger}
}

// Enrich appends the segment label, calendar attributes derived from the
// first date-typed date column, and processing metadata.
func (e *Enricher) Enrich(t *dataset.Table, sheetName string, processedAt time.Time) {
	segment := SegmentFor(sheetName)
	t.AppendColumn(ColSegment, func(int) dataset.Value {
		return dataset.String(segment)
	})

	if idx, ok := e.firstDateColumn(t); ok {
		e.addCalendar(t, idx)
	}

	t.AppendColumn(ColProcessedAt, func(int) dataset.Value {
		return dataset.Date(processedAt)
	})
	t.AppendColumn(ColSource, func(int) dataset.Value {
		return dataset.String(sheetName)
	})

	e.log.Debug("sheet enriched",
		slog.String("sheet", sheetName),
		slog.String("segment", segment))
}

// firstDateColumn returns the index of the first date-classified column that
// actually standardized to date type.
func (e *Enricher) firstDateColumn(t *dataset.Table) (int, bool) {
	for _, name := range e.classifier.Columns(t, cleaning.ClassDate) {
		idx := t.ColumnIndex(name)
		if t.ColumnKind(idx) == dataset.KindDate {
			return idx, true
		}
	}
	return 0, false
}

// addCalendar derives year, month, quarter, and day-of-week (Monday = 0)
// from the date column at idx. Null dates yield null calendar cells.
func (e *Enricher) addCalendar(t *dataset.Table, idx int) {
	derive := func(f func(time.Time) int) func(int) dataset.Value {
		return func(row int) dataset.Value {
			v := t.Rows[row][idx]
			if v.Kind() != dataset.KindDate {
				return dataset.Null()
			}
			return dataset.Number(float64(f(v.Time())))
		}
	}
	t.AppendColumn(ColYear, derive(func(d time.Time) int { return d.Year() }))
	t.AppendColumn(ColMonth, derive(func(d time.Time) int { return int(d.Month()) }))
	t.AppendColumn(ColQuarter, derive(func(d time.Time) int { return (int(d.Month())-1)/3 + 1 }))
	t.AppendColumn(ColWeekday, derive(func(d time.Time) int { return (int(d.Weekday()) + 6) % 7 }))
}

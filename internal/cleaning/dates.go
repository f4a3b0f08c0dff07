package cleaning

import (
	"strconv"
	"strings"
	"time"

	"salesetl/internal/dataset"
)

// serialEpoch is the spreadsheet date-serial origin: two days before
// 1900-01-01, compensating for the convention's historical leap-year bug.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Decoded serial values outside this year window are discarded to null; a
// numeric column that is not actually dates would otherwise be misread.
const (
	serialMinYear = 2020
	serialMaxYear = 2025
)

// dateLayouts are tried in order by the generic strategy. They cover ISO
// forms plus the short formats workbook readers emit for date-styled cells.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006/1/2",
	"01-02-06",
	"1/2/06",
	"01/02/2006",
	time.RFC3339,
	"2006年1月2日",
}

// dateOutcome is the typed result of one parse strategy over a column:
// the rewritten cells and how many parsed successfully.
type dateOutcome struct {
	cells  []dataset.Value
	parsed int
}

// dateStrategy is one step of the fallback chain.
type dateStrategy struct {
	name string
	run  func(col []dataset.Value) dateOutcome
}

var dateStrategies = []dateStrategy{
	{name: "generic", run: parseGenericDates},
	{name: "serial", run: parseSerialDates},
}

// standardizeDates runs the strategy chain over a date-classified column.
// The first strategy that parses at least one value wins. If none does, the
// column is returned unchanged and reported as unparsed.
func standardizeDates(col []dataset.Value) (cells []dataset.Value, strategy string, ok bool) {
	for _, s := range dateStrategies {
		if out := s.run(col); out.parsed > 0 {
			return out.cells, s.name, true
		}
	}
	return col, "", false
}

// parseGenericDates attempts layout-table date parsing of each cell;
// unparsable cells become null.
func parseGenericDates(col []dataset.Value) dateOutcome {
	out := dateOutcome{cells: make([]dataset.Value, len(col))}
	for i, v := range col {
		if v.Kind() == dataset.KindDate {
			out.cells[i] = v
			out.parsed++
			continue
		}
		if v.Kind() != dataset.KindString {
			out.cells[i] = dataset.Null()
			continue
		}
		if t, ok := parseAnyLayout(strings.TrimSpace(v.Text())); ok {
			out.cells[i] = dataset.Date(t)
			out.parsed++
		} else {
			out.cells[i] = dataset.Null()
		}
	}
	return out
}

// parseSerialDates interprets numeric cells as day offsets from the serial
// epoch. Offsets decoding outside the plausible year window become null.
func parseSerialDates(col []dataset.Value) dateOutcome {
	out := dateOutcome{cells: make([]dataset.Value, len(col))}
	for i, v := range col {
		offset, ok := numericCell(v)
		if !ok {
			out.cells[i] = dataset.Null()
			continue
		}
		out.parsed++
		decoded := serialEpoch.Add(time.Duration(offset * float64(24*time.Hour)))
		if decoded.Year() < serialMinYear || decoded.Year() > serialMaxYear {
			out.cells[i] = dataset.Null()
			continue
		}
		out.cells[i] = dataset.Date(decoded)
	}
	return out
}

func parseAnyLayout(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func numericCell(v dataset.Value) (float64, bool) {
	switch v.Kind() {
	case dataset.KindNumber:
		return v.Float(), true
	case dataset.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

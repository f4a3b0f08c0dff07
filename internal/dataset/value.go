package dataset

import (
	"strconv"
	"time"
)

// Kind identifies the type a cell value carries after standardization.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindDate
)

// String returns the lowercase name used in diagnostics and exports.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "null"
	}
}

// Value is a single tagged cell. The zero value is the null marker.
type Value struct {
	kind Kind
	str  string
	num  float64
	date time.Time
}

// Null returns the null cell marker.
func Null() Value { return Value{} }

// String wraps a text cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Date wraps a date cell.
func Date(t time.Time) Value { return Value{kind: KindDate, date: t} }

// Kind reports the value's type tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is the null marker.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the string payload; empty for non-string kinds.
func (v Value) Text() string { return v.str }

// Float returns the numeric payload; zero for non-number kinds.
func (v Value) Float() float64 { return v.num }

// Time returns the date payload; the zero time for non-date kinds.
func (v Value) Time() time.Time { return v.date }

// Format renders the cell for delimited-text and workbook export. Null cells
// render as the empty string.
func (v Value) Format() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return v.date.Format("2006-01-02")
	default:
		return ""
	}
}

// key returns a canonical representation used for exact-duplicate detection.
// It is prefixed by kind so the string "1" and the number 1 never collide.
func (v Value) key() string {
	switch v.kind {
	case KindString:
		return "s:" + v.str
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindDate:
		return "d:" + v.date.Format(time.RFC3339Nano)
	default:
		return "-"
	}
}

// Package lineage records every transformation applied to a sheet as an
// append-only sequence of events. Records are created empty at ingestion,
// grow during cleaning and rule application, and are read-only afterward.
package lineage

import "time"

// Step names for the events the pipeline appends.
const (
	StepColumnNameCleaning = "column_name_cleaning"
	StepBusinessRules      = "business_rules_application"
	StepCleaningFailed     = "cleaning_failed"
	StepUnification        = "unification_column_drop"
)

// ColumnChanges holds the before/after column lists of a renaming step.
type ColumnChanges struct {
	Before []string `yaml:"before"`
	After  []string `yaml:"after"`
}

// Event is one transformation applied to a sheet. It carries either column
// changes or a list of applied-rule summaries, never both.
type Event struct {
	Step         string         `yaml:"step"`
	Timestamp    time.Time      `yaml:"timestamp"`
	Changes      *ColumnChanges `yaml:"changes,omitempty"`
	RulesApplied []string       `yaml:"rules_applied,omitempty"`
}

// Record is the full lineage of one sheet.
type Record struct {
	Source      string    `yaml:"source"`
	ExtractedAt time.Time `yaml:"extraction_timestamp"`

	events []Event
}

// NewRecord creates an empty lineage record at ingestion time.
func NewRecord(source string, extractedAt time.Time) *Record {
	return &Record{Source: source, ExtractedAt: extractedAt}
}

// AppendChanges records a step that rewrote the column list.
func (r *Record) AppendChanges(step string, before, after []string) {
	r.events = append(r.events, Event{
		Step:      step,
		Timestamp: time.Now(),
		Changes: &ColumnChanges{
			Before: append([]string(nil), before...),
			After:  append([]string(nil), after...),
		},
	})
}

// AppendRules records a step as a list of applied-rule summaries.
func (r *Record) AppendRules(step string, rules []string) {
	r.events = append(r.events, Event{
		Step:         step,
		Timestamp:    time.Now(),
		RulesApplied: append([]string(nil), rules...),
	})
}

// Events returns a copy of the transformation sequence so callers cannot
// mutate history.
func (r *Record) Events() []Event {
	return append([]Event(nil), r.events...)
}

// Len returns the number of transformations applied so far.
func (r *Record) Len() int { return len(r.events) }

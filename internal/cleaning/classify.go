package cleaning

import (
	"strings"

	"salesetl/internal/config"
	"salesetl/internal/dataset"
)

// ColumnClass is the role a column plays in standardization and rules.
type ColumnClass int

const (
	ClassText ColumnClass = iota
	ClassQuantity
	ClassDate
)

// classRule is one (predicate, classification) pair. Quantity keywords match
// the raw name, date keywords match the lowercased name.
type classRule struct {
	class    ColumnClass
	keywords []string
	fold     bool
}

// Classifier evaluates an ordered rule table against column names. The first
// matching rule wins; unmatched columns are text.
type Classifier struct {
	rules []classRule
}

// NewClassifier builds the classifier from configured keyword lists.
func NewClassifier(kw config.ColumnKeywords) *Classifier {
	return &Classifier{rules: []classRule{
		{class: ClassQuantity, keywords: kw.Quantity},
		{class: ClassDate, keywords: kw.Date, fold: true},
	}}
}

// Classify returns the class of the named column.
func (c *Classifier) Classify(name string) ColumnClass {
	for _, rule := range c.rules {
		candidate := name
		if rule.fold {
			candidate = strings.ToLower(name)
		}
		for _, kw := range rule.keywords {
			if strings.Contains(candidate, kw) {
				return rule.class
			}
		}
	}
	return ClassText
}

// Columns returns the names of the table's columns with the given class, in
// column order.
func (c *Classifier) Columns(t *dataset.Table, class ColumnClass) []string {
	var out []string
	for _, name := range t.Columns {
		if c.Classify(name) == class {
			out = append(out, name)
		}
	}
	return out
}

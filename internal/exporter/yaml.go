package exporter

import (
	"fmt"

	"gopkg.in/yaml.v2"

	"salesetl/internal/pipeline"
	"salesetl/internal/quality"
)

// QualityYAML renders the per-sheet quality reports as a nested key-value
// document.
func QualityYAML(reports map[string]quality.Report) ([]byte, error) {
	out, err := yaml.Marshal(reports)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quality report: %w", err)
	}
	return out, nil
}

// DictionaryYAML renders the layered data dictionary as a nested key-value
// document.
func DictionaryYAML(dict pipeline.Dictionary) ([]byte, error) {
	out, err := yaml.Marshal(dict)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data dictionary: %w", err)
	}
	return out, nil
}

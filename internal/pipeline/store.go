package pipeline

import (
	"time"

	"salesetl/internal/dataset"
)

// Layer names of the three-stage store.
const (
	LayerRaw     = "raw"
	LayerCleaned = "cleaned"
	LayerUnified = "unified"
)

// UnifiedModelName keys the single entry of the unified layer.
const UnifiedModelName = "unified_model"

// LayerEntry is one sheet's data in a layer, with extraction metadata.
type LayerEntry struct {
	Data      *dataset.Table
	Shape     dataset.Shape
	Timestamp time.Time
	Source    string
	RunID     string
}

func newEntry(t *dataset.Table, source, runID string) LayerEntry {
	return LayerEntry{
		Data:      t,
		Shape:     t.Shape(),
		Timestamp: time.Now(),
		Source:    source,
		RunID:     runID,
	}
}

func copyLayer(layer map[string]LayerEntry) map[string]LayerEntry {
	out := make(map[string]LayerEntry, len(layer))
	for k, v := range layer {
		out[k] = v
	}
	return out
}

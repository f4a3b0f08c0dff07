package pipeline

import (
	"time"

	"salesetl/internal/dataset"
)

// ColumnInfo documents one column of a stored dataset.
type ColumnInfo struct {
	DataType     string   `yaml:"data_type"`
	NonNullCount int      `yaml:"non_null_count"`
	NullCount    int      `yaml:"null_count"`
	UniqueValues int      `yaml:"unique_values"`
	SampleValues []string `yaml:"sample_values"`
}

// DatasetInfo documents one layer entry.
type DatasetInfo struct {
	Columns      map[string]ColumnInfo `yaml:"columns"`
	TotalRows    int                   `yaml:"total_rows"`
	TotalColumns int                   `yaml:"total_columns"`
	CreationTime time.Time             `yaml:"creation_time"`
}

// Dictionary maps layer name to dataset name to documentation.
type Dictionary map[string]map[string]DatasetInfo

const sampleLimit = 3

// DataDictionary derives documentation for every entry of every layer. Pure
// read-only derivation over the store.
func (p *Pipeline) DataDictionary() Dictionary {
	dict := Dictionary{
		LayerRaw:     describeLayer(p.raw),
		LayerCleaned: describeLayer(p.cleaned),
		LayerUnified: map[string]DatasetInfo{},
	}
	if entry, ok := p.Unified(); ok {
		dict[LayerUnified][UnifiedModelName] = describeEntry(entry)
	}
	return dict
}

func describeLayer(layer map[string]LayerEntry) map[string]DatasetInfo {
	out := make(map[string]DatasetInfo, len(layer))
	for name, entry := range layer {
		out[name] = describeEntry(entry)
	}
	return out
}

func describeEntry(entry LayerEntry) DatasetInfo {
	t := entry.Data
	shape := t.Shape()
	info := DatasetInfo{
		Columns:      make(map[string]ColumnInfo, shape.Cols),
		TotalRows:    shape.Rows,
		TotalColumns: shape.Cols,
		CreationTime: entry.Timestamp,
	}
	for idx, name := range t.Columns {
		nonNull := t.ColumnNonNull(idx)
		info.Columns[name] = ColumnInfo{
			DataType:     t.ColumnKind(idx).String(),
			NonNullCount: nonNull,
			NullCount:    shape.Rows - nonNull,
			UniqueValues: t.ColumnDistinct(idx),
			SampleValues: sampleColumn(t, idx),
		}
	}
	return info
}

func sampleColumn(t *dataset.Table, idx int) []string {
	samples := []string{}
	for _, row := range t.Rows {
		if len(samples) == sampleLimit {
			break
		}
		if v := row[idx]; !v.IsNull() {
			samples = append(samples, v.Format())
		}
	}
	return samples
}

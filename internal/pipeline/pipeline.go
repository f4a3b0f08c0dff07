// Package pipeline owns one ingest-to-assess run: the raw, cleaned, and
// unified layers, the per-sheet lineage, and the quality reports. A Pipeline
// is a single-owner value; it is not safe for concurrent mutation.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"salesetl/internal/cleaning"
	"salesetl/internal/config"
	"salesetl/internal/dataset"
	"salesetl/internal/enrich"
	"salesetl/internal/ingest"
	"salesetl/internal/lineage"
	"salesetl/internal/quality"
	"salesetl/internal/rules"
	"salesetl/internal/unify"
)

// ErrIngestion marks an unparsable or unreadable source buffer. Ingestion
// leaves no partial state behind it.
var ErrIngestion = errors.New("ingestion failed")

// Pipeline is the run context carried through every stage.
type Pipeline struct {
	cfg   *config.Config
	log   *slog.Logger
	runID string

	cleaner  *cleaning.Cleaner
	engine   *rules.Engine
	enricher *enrich.Enricher

	order   []string
	raw     map[string]LayerEntry
	cleaned map[string]LayerEntry
	unified *unify.Result
	records map[string]*lineage.Record
	reports map[string]quality.Report
}

// New creates a pipeline for one run. A nil config uses the built-in
// defaults; a nil logger uses slog.Default.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	cleaner := cleaning.New(cfg, logger)
	return &Pipeline{
		cfg:      cfg,
		log:      logger,
		runID:    uuid.NewString(),
		cleaner:  cleaner,
		engine:   rules.New(cfg, cleaner.Classifier(), logger),
		enricher: enrich.New(cleaner.Classifier(), logger),
		raw:      make(map[string]LayerEntry),
		cleaned:  make(map[string]LayerEntry),
		records:  make(map[string]*lineage.Record),
		reports:  make(map[string]quality.Report),
	}
}

// RunID identifies this run; it tags every layer entry's provenance.
func (p *Pipeline) RunID() string { return p.runID }

// Ingest parses every sheet of the workbook bytes into the raw layer and
// creates each sheet's empty lineage record. On failure it returns an error
// matching ErrIngestion and writes nothing.
func (p *Pipeline) Ingest(data []byte, filename string) error {
	p.log.Info("starting data extraction", slog.String("source", filename))

	sheets, err := ingest.Parse(data, p.log)
	if err != nil {
		p.log.Error("data extraction failed",
			slog.String("source", filename),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %q: %w", ErrIngestion, filename, err)
	}

	now := time.Now()
	for _, sheet := range sheets {
		p.order = append(p.order, sheet.Name)
		p.raw[sheet.Name] = newEntry(sheet.Table, filename, p.runID)
		p.records[sheet.Name] = lineage.NewRecord(filename, now)
	}

	p.log.Info("data extraction complete",
		slog.String("source", filename),
		slog.Int("sheets", len(sheets)))
	return nil
}

// ValidateSources reports read-only diagnostics per raw sheet. It mutates
// nothing.
func (p *Pipeline) ValidateSources() map[string]dataset.SourceCheck {
	checks := make(map[string]dataset.SourceCheck, len(p.raw))
	for name, entry := range p.raw {
		checks[name] = dataset.Check(entry.Data)
	}
	return checks
}

// RunETL cleans, validates, and enriches every raw sheet into the cleaned
// layer. Explanation sheets are skipped entirely. A sheet whose cleaning
// fails is excluded from the cleaned layer with the failure recorded in its
// lineage; the run continues with the remaining sheets.
func (p *Pipeline) RunETL() {
	p.log.Info("starting ETL process")

	for _, name := range p.order {
		if enrich.IsExplanationSheet(name) {
			p.log.Debug("skipping explanation sheet", slog.String("sheet", name))
			continue
		}

		entry := p.raw[name]
		rec := p.records[name]
		table := entry.Data.Clone()

		if err := p.processSheet(table, name, rec); err != nil {
			p.log.Warn("sheet excluded from cleaned layer",
				slog.String("sheet", name),
				slog.String("error", err.Error()))
			rec.AppendRules(lineage.StepCleaningFailed, []string{err.Error()})
			continue
		}

		p.cleaned[name] = newEntry(table, entry.Source, p.runID)
		shape := table.Shape()
		p.log.Info("sheet processed",
			slog.String("sheet", name),
			slog.Int("rows", shape.Rows),
			slog.Int("cols", shape.Cols),
			slog.Int("transformations", rec.Len()))
	}
}

func (p *Pipeline) processSheet(t *dataset.Table, name string, rec *lineage.Record) error {
	if err := p.cleaner.Clean(t, rec); err != nil {
		return fmt.Errorf("cleaning: %w", err)
	}
	if err := p.engine.Apply(t, rec); err != nil {
		return fmt.Errorf("business rules: %w", err)
	}
	p.enricher.Enrich(t, name, time.Now())
	return nil
}

// Unify builds the gold layer from the cleaned sheets in processing order
// and records the intersection-dropped columns in each contributor's
// lineage. An empty intersection leaves the unified layer absent.
func (p *Pipeline) Unify() error {
	var inputs []unify.Input
	for _, name := range p.order {
		if entry, ok := p.cleaned[name]; ok {
			inputs = append(inputs, unify.Input{Name: name, Table: entry.Data})
		}
	}

	res, err := unify.Unify(inputs, p.log)
	if err != nil {
		return fmt.Errorf("unification: %w", err)
	}
	p.unified = res
	if res == nil {
		return nil
	}

	for _, name := range res.SourceSheets {
		dropped := res.DroppedColumns[name]
		if len(dropped) == 0 {
			continue
		}
		p.records[name].AppendRules(lineage.StepUnification,
			[]string{fmt.Sprintf("Dropped %d sheet-specific columns: %v", len(dropped), dropped)})
	}
	return nil
}

// AssessQuality scores every cleaned sheet, replacing any prior report
// wholesale.
func (p *Pipeline) AssessQuality() {
	p.log.Info("starting data quality assessment")
	reports := make(map[string]quality.Report, len(p.cleaned))
	for name, entry := range p.cleaned {
		reports[name] = quality.Assess(entry.Data, p.cleaner.Classifier(), p.cfg.Quality)
	}
	p.reports = reports
	p.log.Info("data quality assessment complete", slog.Int("sheets", len(reports)))
}

// Run executes the full chain: ingest, ETL, unification, quality
// assessment. An ingestion failure aborts before any downstream stage.
func (p *Pipeline) Run(data []byte, filename string) error {
	if err := p.Ingest(data, filename); err != nil {
		return err
	}
	p.RunETL()
	if err := p.Unify(); err != nil {
		return err
	}
	p.AssessQuality()
	return nil
}

// Raw returns a snapshot of the raw layer keyed by sheet name. Callers must
// treat entries as read-only.
func (p *Pipeline) Raw() map[string]LayerEntry { return copyLayer(p.raw) }

// Cleaned returns a snapshot of the cleaned layer keyed by sheet name.
func (p *Pipeline) Cleaned() map[string]LayerEntry { return copyLayer(p.cleaned) }

// Unified returns the gold-layer entry, or false when no unified table was
// produced.
func (p *Pipeline) Unified() (LayerEntry, bool) {
	if p.unified == nil {
		return LayerEntry{}, false
	}
	entry := newEntry(p.unified.Table, UnifiedModelName, p.runID)
	entry.Timestamp = p.unified.CreatedAt
	return entry, true
}

// UnifiedResult returns the full unification result for export, or nil.
func (p *Pipeline) UnifiedResult() *unify.Result { return p.unified }

// Lineage returns the per-sheet lineage records keyed by sheet name.
func (p *Pipeline) Lineage() map[string]*lineage.Record {
	out := make(map[string]*lineage.Record, len(p.records))
	for k, v := range p.records {
		out[k] = v
	}
	return out
}

// QualityReports returns the per-sheet quality reports keyed by sheet name.
func (p *Pipeline) QualityReports() map[string]quality.Report {
	out := make(map[string]quality.Report, len(p.reports))
	for k, v := range p.reports {
		out[k] = v
	}
	return out
}

// SheetOrder returns the workbook sheet order established at ingestion.
func (p *Pipeline) SheetOrder() []string {
	return append([]string(nil), p.order...)
}

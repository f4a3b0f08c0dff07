package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salesetl/internal/dataset"
	"salesetl/internal/lineage"
)

type testSheet struct {
	name string
	rows [][]interface{}
}

func workbookBytes(t *testing.T, sheets []testSheet) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, sheet := range sheets {
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), sheet.name)
		} else {
			_, err := f.NewSheet(sheet.name)
			require.NoError(t, err)
		}
		for r := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet.name, cell, &sheet.rows[r]))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func salesWorkbook(t *testing.T) []byte {
	t.Helper()
	return workbookBytes(t, []testSheet{
		{
			name: "RX华北",
			rows: [][]interface{}{
				{"ID", " QTY数量 ", "OrderDate订单日期", "ItemName产品名称"},
				{"1", 10, "2023-01-15", "Aspirin"},
				{"2", 0, "2023-02-20", "Ibuprofen"},
				{"3", "bad", "2019-05-01", "Paracetamol"},
			},
		},
		{
			name: "Retail门店",
			rows: [][]interface{}{
				{"ID", "QTY数量", "OrderDate订单日期", "Region"},
				{"4", 7, "2024-06-01", "East"},
				{"5", 3, "2024-07-15", "West"},
			},
		},
		{
			name: "产品清单",
			rows: [][]interface{}{
				{"ItemName产品名称", "Category"},
				{"Aspirin", "OTC"},
			},
		},
		{
			name: "字段说明",
			rows: [][]interface{}{
				{"字段", "含义"},
				{"QTY数量", "订单数量"},
			},
		},
	})
}

func TestRunFullPipeline(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Run(salesWorkbook(t), "sales.xlsx"))

	raw := p.Raw()
	cleaned := p.Cleaned()
	assert.Len(t, raw, 4)
	assert.Len(t, cleaned, 3)

	// Explanation sheets stay in raw but never reach the cleaned layer,
	// gain lineage transformations, or contribute to the unified table.
	_, ok := cleaned["字段说明"]
	assert.False(t, ok)
	assert.Zero(t, p.Lineage()["字段说明"].Len())

	res := p.UnifiedResult()
	require.NotNil(t, res)
	assert.NotContains(t, res.SourceSheets, "字段说明")
	assert.NotContains(t, res.SourceSheets, "产品清单")
}

func TestCleanedShapeNeverExceedsRaw(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Run(salesWorkbook(t), "sales.xlsx"))

	raw := p.Raw()
	for name, entry := range p.Cleaned() {
		// Enrichment adds columns, so compare rows only plus the
		// original column subset: no data row is ever created.
		assert.LessOrEqual(t, entry.Shape.Rows, raw[name].Shape.Rows, name)
	}
}

func TestRunAppliesRulesAndRecordsLineage(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Run(salesWorkbook(t), "sales.xlsx"))

	entry := p.Cleaned()["RX华北"]
	qty := entry.Data.ColumnIndex("QTY数量")
	require.GreaterOrEqual(t, qty, 0, "normalized quantity column present")

	// Quantity 0 and unparsable-coerced-to-0 both fall below the floor.
	assert.Equal(t, 10.0, entry.Data.Rows[0][qty].Float())
	assert.True(t, entry.Data.Rows[1][qty].IsNull())
	assert.True(t, entry.Data.Rows[2][qty].IsNull())

	// The 2019 date is outside the valid window.
	dateIdx := entry.Data.ColumnIndex("OrderDate订单日期")
	require.GreaterOrEqual(t, dateIdx, 0)
	assert.False(t, entry.Data.Rows[0][dateIdx].IsNull())
	assert.True(t, entry.Data.Rows[2][dateIdx].IsNull())

	var ruleEvent *lineage.Event
	for _, ev := range p.Lineage()["RX华北"].Events() {
		if ev.Step == lineage.StepBusinessRules {
			e := ev
			ruleEvent = &e
		}
	}
	require.NotNil(t, ruleEvent)
	require.Len(t, ruleEvent.RulesApplied, 2)
	assert.Contains(t, ruleEvent.RulesApplied[0], "2 records")
	assert.Contains(t, ruleEvent.RulesApplied[1], "1 records")
}

func TestRunEnrichesSheets(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Run(salesWorkbook(t), "sales.xlsx"))

	entry := p.Cleaned()["Retail门店"]
	segIdx := entry.Data.ColumnIndex("市场类型")
	require.GreaterOrEqual(t, segIdx, 0)
	assert.Equal(t, "零售市场", entry.Data.Rows[0][segIdx].Text())

	yearIdx := entry.Data.ColumnIndex("年份")
	require.GreaterOrEqual(t, yearIdx, 0)
	assert.Equal(t, 2024.0, entry.Data.Rows[0][yearIdx].Float())

	srcIdx := entry.Data.ColumnIndex("数据来源")
	require.GreaterOrEqual(t, srcIdx, 0)
	assert.Equal(t, "Retail门店", entry.Data.Rows[0][srcIdx].Text())
}

func TestRunUnifiesCommonColumns(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Run(salesWorkbook(t), "sales.xlsx"))

	res := p.UnifiedResult()
	require.NotNil(t, res)

	// ID, QTY数量, OrderDate订单日期 survive from both sales sheets, plus
	// the enrichment columns; sheet-specific columns are dropped.
	assert.Contains(t, res.CommonColumns, "ID")
	assert.Contains(t, res.CommonColumns, "QTY数量")
	assert.NotContains(t, res.CommonColumns, "ItemName产品名称")
	assert.NotContains(t, res.CommonColumns, "Region")
	assert.Equal(t, 5, len(res.Table.Rows))
	assert.Equal(t, []string{"RX华北", "Retail门店"}, res.SourceSheets)

	entry, ok := p.Unified()
	require.True(t, ok)
	assert.Equal(t, res.CreatedAt, entry.Timestamp)

	// The intersection drop is surfaced in the contributors' lineage.
	var found bool
	for _, ev := range p.Lineage()["RX华北"].Events() {
		if ev.Step == lineage.StepUnification {
			found = true
			assert.Contains(t, ev.RulesApplied[0], "ItemName产品名称")
		}
	}
	assert.True(t, found)
}

func TestRunAssessesQuality(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Run(salesWorkbook(t), "sales.xlsx"))

	reports := p.QualityReports()
	require.Len(t, reports, 3)
	for name, rep := range reports {
		assert.GreaterOrEqual(t, rep.Completeness, 0.0, name)
		assert.LessOrEqual(t, rep.Completeness, 1.0, name)
		assert.GreaterOrEqual(t, rep.Validity, 0.0, name)
		assert.LessOrEqual(t, rep.Validity, 1.0, name)
		assert.GreaterOrEqual(t, rep.Consistency, 0.0, name)
		assert.LessOrEqual(t, rep.Consistency, 1.0, name)
		assert.False(t, rep.AssessedAt.IsZero(), name)
	}

	// A second assessment replaces reports wholesale and cannot raise
	// completeness: no stage between the runs adds values back.
	before := reports["RX华北"].Completeness
	p.AssessQuality()
	assert.LessOrEqual(t, p.QualityReports()["RX华北"].Completeness, before)
}

func TestIngestFailureLeavesNoState(t *testing.T) {
	p := New(nil, nil)
	err := p.Ingest([]byte("not a workbook"), "bad.bin")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIngestion)
	assert.Empty(t, p.Raw())
	assert.Empty(t, p.Lineage())
	assert.Empty(t, p.SheetOrder())
}

func TestCleaningFailureExcludesSheetOnly(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Ingest(salesWorkbook(t), "sales.xlsx"))

	// Corrupt one raw sheet so its integrity check fails.
	bad := p.raw["RX华北"].Data
	bad.Rows[0] = bad.Rows[0][:1]

	p.RunETL()

	_, ok := p.Cleaned()["RX华北"]
	assert.False(t, ok)
	_, ok = p.Cleaned()["Retail门店"]
	assert.True(t, ok)

	events := p.Lineage()["RX华北"].Events()
	require.NotEmpty(t, events)
	assert.Equal(t, lineage.StepCleaningFailed, events[len(events)-1].Step)
}

func TestValidateSourcesIsReadOnly(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Ingest(salesWorkbook(t), "sales.xlsx"))

	rawBefore := p.Raw()["RX华北"].Data.Clone()
	checks := p.ValidateSources()

	require.Len(t, checks, 4)
	check := checks["RX华北"]
	assert.False(t, check.IsEmpty)
	assert.Equal(t, 0, check.DuplicateRows)
	assert.NotEmpty(t, check.ColumnTypes)

	assert.Equal(t, rawBefore, p.Raw()["RX华北"].Data)
}

func TestDataDictionaryDescribesAllLayers(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Run(salesWorkbook(t), "sales.xlsx"))

	dict := p.DataDictionary()
	require.Len(t, dict[LayerRaw], 4)
	require.Len(t, dict[LayerCleaned], 3)
	require.Len(t, dict[LayerUnified], 1)

	info := dict[LayerCleaned]["RX华北"]
	entry := p.Cleaned()["RX华北"]
	assert.Equal(t, entry.Shape.Rows, info.TotalRows)
	assert.Equal(t, entry.Shape.Cols, info.TotalColumns)

	col, ok := info.Columns["ID"]
	require.True(t, ok)
	assert.Equal(t, entry.Data.ColumnNonNull(entry.Data.ColumnIndex("ID")), col.NonNullCount)
	assert.LessOrEqual(t, len(col.SampleValues), 3)
}

func TestRunIDTagsLayerEntries(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Run(salesWorkbook(t), "sales.xlsx"))

	require.NotEmpty(t, p.RunID())
	for _, entry := range p.Raw() {
		assert.Equal(t, p.RunID(), entry.RunID)
	}
	for _, entry := range p.Cleaned() {
		assert.Equal(t, p.RunID(), entry.RunID)
	}
}

func TestRawSheetShapesMatchSource(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Ingest(salesWorkbook(t), "sales.xlsx"))

	raw := p.Raw()
	assert.Equal(t, dataset.Shape{Rows: 3, Cols: 4}, raw["RX华北"].Shape)
	assert.Equal(t, dataset.Shape{Rows: 2, Cols: 4}, raw["Retail门店"].Shape)
	assert.Equal(t, "sales.xlsx", raw["RX华北"].Source)
	assert.WithinDuration(t, time.Now(), raw["RX华北"].Timestamp, time.Minute)
}

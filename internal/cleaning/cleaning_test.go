package cleaning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/config"
	"salesetl/internal/dataset"
	"salesetl/internal/lineage"
)

func newCleaner(t *testing.T) *Cleaner {
	t.Helper()
	return New(config.Default(), nil)
}

func newRecord() *lineage.Record {
	return lineage.NewRecord("test.xlsx", time.Now())
}

func TestCleanNormalizesColumnNames(t *testing.T) {
	table := dataset.NewTable("  QTY数量 ", "Order\nDate订单日期", "Item  Name")
	table.AppendRow(dataset.String("1"), dataset.String("2023-01-01"), dataset.String("x"))
	rec := newRecord()

	require.NoError(t, newCleaner(t).Clean(table, rec))

	assert.Equal(t, []string{"QTY数量", "OrderDate订单日期", "ItemName"}, table.Columns)

	events := rec.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, lineage.StepColumnNameCleaning, events[0].Step)
	assert.Equal(t, []string{"  QTY数量 ", "Order\nDate订单日期", "Item  Name"}, events[0].Changes.Before)
	assert.Equal(t, []string{"QTY数量", "OrderDate订单日期", "ItemName"}, events[0].Changes.After)
}

func TestCleanDropsEmptyColumnsAndRows(t *testing.T) {
	table := dataset.NewTable("A", "Empty", "B")
	table.AppendRow(dataset.String("a1"), dataset.Null(), dataset.String("b1"))
	table.AppendRow(dataset.Null(), dataset.Null(), dataset.Null())
	table.AppendRow(dataset.String("a2"), dataset.Null(), dataset.String("b2"))

	require.NoError(t, newCleaner(t).Clean(table, newRecord()))

	assert.Equal(t, []string{"A", "B"}, table.Columns)
	assert.Equal(t, 2, len(table.Rows))
}

func TestCleanCoercesQuantities(t *testing.T) {
	table := dataset.NewTable("QTY数量")
	table.AppendRow(dataset.String("12"))
	table.AppendRow(dataset.String(" 3.5 "))
	table.AppendRow(dataset.String("garbage"))
	table.AppendRow(dataset.String("x"))

	require.NoError(t, newCleaner(t).Clean(table, newRecord()))

	want := []float64{12, 3.5, 0, 0}
	for i, w := range want {
		v := table.Rows[i][0]
		assert.Equal(t, dataset.KindNumber, v.Kind(), "row %d", i)
		assert.Equal(t, w, v.Float(), "row %d", i)
	}
}

func TestCleanParsesGenericDates(t *testing.T) {
	table := dataset.NewTable("OrderDate订单日期")
	table.AppendRow(dataset.String("2023-01-15"))
	table.AppendRow(dataset.String("2024/03/02"))
	table.AppendRow(dataset.String("not a date"))

	require.NoError(t, newCleaner(t).Clean(table, newRecord()))

	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), table.Rows[0][0].Time())
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), table.Rows[1][0].Time())
	assert.True(t, table.Rows[2][0].IsNull())
}

func TestCleanDateSerialFallback(t *testing.T) {
	// Generic parsing yields zero dates, so the serial-offset strategy
	// applies. 44927 days past the 1899-12-30 epoch is 2023-01-01.
	table := dataset.NewTable("ReportMonth日期")
	table.AppendRow(dataset.String("44927"))
	table.AppendRow(dataset.String("100"))   // decodes to 1900, outside window
	table.AppendRow(dataset.String("60000")) // decodes past 2025, outside window

	require.NoError(t, newCleaner(t).Clean(table, newRecord()))

	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), table.Rows[0][0].Time())
	assert.True(t, table.Rows[1][0].IsNull())
	assert.True(t, table.Rows[2][0].IsNull())
}

func TestCleanLeavesUnparsableDateColumn(t *testing.T) {
	table := dataset.NewTable("OrderDate订单日期")
	table.AppendRow(dataset.String("first half"))
	table.AppendRow(dataset.String("second half"))

	require.NoError(t, newCleaner(t).Clean(table, newRecord()))

	// Neither strategy produced a date; the raw text survives.
	assert.Equal(t, "first half", table.Rows[0][0].Text())
	assert.Equal(t, "second half", table.Rows[1][0].Text())
}

func TestCleanNormalizesText(t *testing.T) {
	table := dataset.NewTable("ItemName产品名称", "keep")
	table.AppendRow(dataset.String("  Aspirin  "), dataset.String("ok"))
	table.AppendRow(dataset.String("nan"), dataset.String("ok"))
	table.AppendRow(dataset.String("None"), dataset.String("ok"))
	table.AppendRow(dataset.String("   "), dataset.String("ok"))

	require.NoError(t, newCleaner(t).Clean(table, newRecord()))

	assert.Equal(t, "Aspirin", table.Rows[0][0].Text())
	assert.True(t, table.Rows[1][0].IsNull())
	assert.True(t, table.Rows[2][0].IsNull())
	assert.True(t, table.Rows[3][0].IsNull())
}

func TestCleanRejectsCorruptTable(t *testing.T) {
	table := dataset.NewTable("A", "B")
	table.AppendRow(dataset.String("x"), dataset.String("y"))
	table.Rows[0] = table.Rows[0][:1]

	err := newCleaner(t).Clean(table, newRecord())
	assert.Error(t, err)
}

func TestCleanNeverRemovesDataRows(t *testing.T) {
	table := dataset.NewTable("QTY数量", "OrderDate订单日期")
	table.AppendRow(dataset.String("bad"), dataset.String("bad"))
	table.AppendRow(dataset.String("5"), dataset.String("2023-06-01"))

	require.NoError(t, newCleaner(t).Clean(table, newRecord()))
	assert.Equal(t, 2, len(table.Rows))
}

func TestClassifierOrder(t *testing.T) {
	c := NewClassifier(config.Default().Columns)

	tests := []struct {
		name string
		want ColumnClass
	}{
		{name: "QTY数量", want: ClassQuantity},
		{name: "OrderDate订单日期", want: ClassDate},
		{name: "ReportMonth", want: ClassDate},
		{name: "ItemName产品名称", want: ClassText},
		// Quantity keywords take priority over date keywords.
		{name: "QTY-Date", want: ClassQuantity},
		// Quantity keywords are case sensitive.
		{name: "qty", want: ClassText},
		// Date keywords are case insensitive.
		{name: "ORDERDATE", want: ClassDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.name))
		})
	}
}

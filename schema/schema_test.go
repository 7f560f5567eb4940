package schema

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasurementRecordDerivedFields(t *testing.T) {
	loc := time.FixedZone("PDT", -7*3600)
	r := MeasurementRecord{
		Type:      "HKQuantityTypeIdentifierStepCount",
		StartTime: time.Date(2024, 1, 1, 23, 30, 0, 0, loc),
	}

	assert.Equal(t, "StepCount", r.TypeSimplified())
	// The calendar day follows the timestamp's own offset, not UTC.
	assert.Equal(t, "2024-01-01", r.Date())
}

func TestSimplifyType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "quantity prefix", input: "HKQuantityTypeIdentifierHeartRate", expected: "HeartRate"},
		{name: "category type untouched", input: "HKCategoryTypeIdentifierSleepAnalysis", expected: "HKCategoryTypeIdentifierSleepAnalysis"},
		{name: "prefix only at start", input: "MyHKQuantityTypeIdentifier", expected: "MyHKQuantityTypeIdentifier"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SimplifyType(tt.input))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		precision int
		expected  string
	}{
		{name: "integral shortest", value: 15, precision: -1, expected: "15.0"},
		{name: "fraction shortest", value: 72.25, precision: -1, expected: "72.25"},
		{name: "zero shortest", value: 0, precision: -1, expected: "0.0"},
		{name: "negative shortest", value: -3, precision: -1, expected: "-3.0"},
		{name: "fixed precision", value: 72.256, precision: 2, expected: "72.26"},
		{name: "fixed zero precision", value: 72.6, precision: 0, expected: "73"},
		{name: "nan", value: math.NaN(), precision: -1, expected: "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.value, tt.precision))
		})
	}
}

func TestCellFormat(t *testing.T) {
	assert.Equal(t, "", Missing.Format(NumberColumn, -1))
	assert.Equal(t, "", Missing.Format(TextColumn, -1))
	assert.Equal(t, "7", IntCell(7).Format(IntegerColumn, 2))
	assert.Equal(t, "abc", TextCell("abc").Format(TextColumn, 2))
	assert.Equal(t, "1.50", NumberCell(1.5).Format(NumberColumn, 2))

	assert.Nil(t, Missing.Value(NumberColumn))
	assert.Equal(t, 1.5, NumberCell(1.5).Value(NumberColumn))
	assert.Equal(t, int64(3), IntCell(3).Value(IntegerColumn))
	assert.Equal(t, "x", TextCell("x").Value(TextColumn))
}

func TestTable(t *testing.T) {
	table := NewTable("demo",
		Column{Name: "date", Kind: TextColumn},
		Column{Name: "steps", Kind: NumberColumn},
	)
	assert.True(t, table.Empty())
	assert.Equal(t, 0, table.Len())

	require.NoError(t, table.Append([]Cell{TextCell("2024-01-01"), NumberCell(100)}))
	require.NoError(t, table.Append([]Cell{TextCell("2024-01-02"), Missing}))
	assert.Error(t, table.Append([]Cell{TextCell("short")}))

	assert.False(t, table.Empty())
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"date", "steps"}, table.ColumnNames())
	assert.Equal(t, 1, table.ColumnIndex("steps"))
	assert.Equal(t, -1, table.ColumnIndex("nope"))

	assert.Equal(t, [][]string{{"2024-01-01", "100.0"}, {"2024-01-02", ""}}, table.StringRows(-1))

	records := table.Records()
	require.Len(t, records, 2)
	assert.Equal(t, 100.0, records[0].Get("steps"))
	assert.Nil(t, records[1].Get("steps"))
	assert.Nil(t, records[0].Get("nope"))
	assert.Equal(t, []string{"date", "steps"}, records[0].Keys())

	assert.Equal(t, 1, table.Head(1).Len())
	assert.Equal(t, 2, table.Head(0).Len())
	assert.Equal(t, 2, table.Head(10).Len())
}

func TestRecordsKeepColumnOrder(t *testing.T) {
	table := NewTable("ts",
		Column{Name: "timestamp", Kind: TextColumn},
		Column{Name: "StepCount", Kind: NumberColumn},
		Column{Name: "HeartRate", Kind: NumberColumn},
		Column{Name: "count", Kind: IntegerColumn},
	)
	require.NoError(t, table.Append([]Cell{TextCell("2024-03-01 08:00:00 -0800"), NumberCell(15), Missing, IntCell(2)}))

	data, err := json.Marshal(table.Records())
	require.NoError(t, err)
	assert.Equal(t, `[{"timestamp":"2024-03-01 08:00:00 -0800","StepCount":15,"HeartRate":null,"count":2}]`, string(data))
}

func TestNilTable(t *testing.T) {
	var table *Table
	assert.True(t, table.Empty())
	assert.Equal(t, 0, table.Len())
}

func TestDailyMetricsMapping(t *testing.T) {
	require.Len(t, DailyMetrics, 10)
	assert.Equal(t, "heart_rate", DailyMetrics[0].Column)
	assert.Equal(t, "flights_climbed", DailyMetrics[len(DailyMetrics)-1].Column)

	seen := make(map[string]bool)
	for _, m := range DailyMetrics {
		assert.False(t, seen[m.Column], "duplicate column %s", m.Column)
		seen[m.Column] = true
		assert.Contains(t, []AggKind{AggMean, AggSum}, m.Agg)
	}

	steps := DailyMetrics[2]
	assert.Equal(t, "HKQuantityTypeIdentifierStepCount", steps.Type)
	assert.Equal(t, AggSum, steps.Agg)
}

func TestOutputModeFileExtension(t *testing.T) {
	assert.Equal(t, "csv", CSVOut.FileExtension())
	assert.Equal(t, "txt", TextOut.FileExtension())
	assert.Equal(t, "xlsx", XLSXOut.FileExtension())
	assert.Equal(t, "parquet", ParquetOut.FileExtension())
	assert.Equal(t, "json", JSONOut.FileExtension())
}

package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/healthtab/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleImportRuns() []ImportRun {
	now := time.Now()
	start := now.Add(-2 * time.Hour)
	end := start.Add(90 * time.Second)
	duration := int32(end.Sub(start).Milliseconds())
	params := `{"format":"pivoted","output":"csv"}`

	return []ImportRun{
		{
			RunID:           1,
			SourcePath:      "/data/export.xml",
			StartTime:       start,
			EndTime:         &end,
			RunDurationMs:   &duration,
			TotalRecords:    1200,
			TotalWorkouts:   4,
			SkippedRecords:  2,
			SkippedWorkouts: 0,
			ConfigParams:    &params,
		},
		{
			RunID:      2,
			SourcePath: "/data/export.xml",
			StartTime:  now.Add(-time.Minute),
			// Still running: nullable fields stay nil
		},
	}
}

func sampleTypeSummaries() []TypeSummary {
	unit := "count/min"
	return []TypeSummary{
		{RunID: 1, RecordType: "HKQuantityTypeIdentifierHeartRate", RecordedAt: time.Now(), ValueCount: 3, ValueMean: 61.11, ValueMin: 60, ValueMax: 62.33, Unit: &unit},
		{RunID: 1, RecordType: "HKQuantityTypeIdentifierStepCount", RecordedAt: time.Now(), ValueCount: 1, ValueMean: 10, ValueMin: 10, ValueMax: 10},
	}
}

func TestImportRunStructTags(t *testing.T) {
	sch := parquet.SchemaOf(new(ImportRun))
	require.NotNil(t, sch)

	for _, colName := range []string{
		"run_id", "source_path", "start_time", "end_time", "run_duration_ms",
		"total_records", "total_workouts", "skipped_records", "skipped_workouts", "config_params",
	} {
		col, ok := sch.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestTypeSummaryStructTags(t *testing.T) {
	sch := parquet.SchemaOf(new(TypeSummary))
	require.NotNil(t, sch)

	for _, colName := range []string{
		"run_id", "record_type", "recorded_at", "value_count", "value_mean", "value_min", "value_max", "unit",
	} {
		_, ok := sch.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestWriteImportRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "import_runs.parquet")
	data := sampleImportRuns()

	require.NoError(t, WriteImportRunsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[ImportRun](file)
	defer reader.Close()

	readData := make([]ImportRun, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	for i := range data {
		assert.Equal(t, data[i].RunID, readData[i].RunID)
		assert.Equal(t, data[i].SourcePath, readData[i].SourcePath)
		assert.Equal(t, data[i].TotalRecords, readData[i].TotalRecords)
		if data[i].EndTime == nil {
			assert.Nil(t, readData[i].EndTime)
			assert.Nil(t, readData[i].RunDurationMs)
			assert.Nil(t, readData[i].ConfigParams)
			continue
		}
		require.NotNil(t, readData[i].EndTime)
		assert.WithinDuration(t, *data[i].EndTime, *readData[i].EndTime, time.Nanosecond)
		assert.Equal(t, *data[i].RunDurationMs, *readData[i].RunDurationMs)
		assert.Equal(t, *data[i].ConfigParams, *readData[i].ConfigParams)
	}
}

func TestWriteTypeSummariesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "type_summaries.parquet")
	data := sampleTypeSummaries()

	require.NoError(t, WriteTypeSummariesParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[TypeSummary](file)
	defer reader.Close()

	readData := make([]TypeSummary, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)
	assert.Equal(t, data[0].RecordType, readData[0].RecordType)
	assert.Equal(t, 61.11, readData[0].ValueMean)
	require.NotNil(t, readData[0].Unit)
	assert.Equal(t, "count/min", *readData[0].Unit)
	assert.Nil(t, readData[1].Unit)
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	assert.Error(t, WriteImportRunsParquet(sampleImportRuns(), "/nonexistent/dir/out.parquet"))
	assert.Error(t, WriteTypeSummariesParquet(sampleTypeSummaries(), "/nonexistent/dir/out.parquet"))
}

func TestConvertRecords(t *testing.T) {
	end := time.Now()
	runs := ConvertImportRunRecords([]schema.ImportRunRecord{
		{RunID: 7, SourcePath: "/x.xml", StartTime: end.Add(-time.Second), EndTime: &end, TotalRecords: 5},
	})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(7), runs[0].RunID)
	assert.Equal(t, int32(5), runs[0].TotalRecords)
	assert.Equal(t, &end, runs[0].EndTime)

	unit := "kg"
	sums := ConvertTypeSummaryRecords([]schema.TypeSummaryRecord{
		{RunID: 7, RecordType: "HKQuantityTypeIdentifierBodyMass", ValueCount: 2, ValueMean: 70.5, Unit: &unit},
	})
	require.Len(t, sums, 1)
	assert.Equal(t, "HKQuantityTypeIdentifierBodyMass", sums[0].RecordType)
	assert.Equal(t, 70.5, sums[0].ValueMean)
	assert.Equal(t, &unit, sums[0].Unit)
}

// timeSeriesRow mirrors the schema WriteTable derives for a time series table.
type timeSeriesRow struct {
	Timestamp *string  `parquet:"timestamp,optional"`
	HeartRate *float64 `parquet:"HeartRate,optional"`
	StepCount *float64 `parquet:"StepCount,optional"`
}

func TestWriteTable(t *testing.T) {
	table := schema.NewTable("time_series",
		schema.Column{Name: "timestamp", Kind: schema.TextColumn},
		schema.Column{Name: "StepCount", Kind: schema.NumberColumn},
		schema.Column{Name: "HeartRate", Kind: schema.NumberColumn},
	)
	require.NoError(t, table.Append([]schema.Cell{schema.TextCell("2024-01-01 08:00:00-08:00"), schema.NumberCell(15), schema.NumberCell(70)}))
	require.NoError(t, table.Append([]schema.Cell{schema.TextCell("2024-01-01 08:01:00-08:00"), schema.NumberCell(5), schema.Missing}))

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, table))

	reader := parquet.NewGenericReader[timeSeriesRow](bytes.NewReader(buf.Bytes()))
	defer reader.Close()
	require.Equal(t, int64(2), reader.NumRows())

	rows := make([]timeSeriesRow, 2)
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)

	require.NotNil(t, rows[0].Timestamp)
	assert.Equal(t, "2024-01-01 08:00:00-08:00", *rows[0].Timestamp)
	require.NotNil(t, rows[0].StepCount)
	assert.Equal(t, 15.0, *rows[0].StepCount)
	require.NotNil(t, rows[0].HeartRate)
	assert.Equal(t, 70.0, *rows[0].HeartRate)
	assert.Nil(t, rows[1].HeartRate)
}

func TestTableSchema(t *testing.T) {
	table := schema.NewTable("pivoted",
		schema.Column{Name: "sequence", Kind: schema.IntegerColumn},
		schema.Column{Name: "HeartRate", Kind: schema.NumberColumn},
	)
	sch := TableSchema(table)
	for _, name := range []string{"sequence", "HeartRate"} {
		col, ok := sch.Lookup(name)
		require.True(t, ok)
		assert.Equal(t, 1, col.MaxDefinitionLevel)
	}
}

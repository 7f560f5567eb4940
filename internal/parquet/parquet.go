// Package parquet provides data structures and functions for exporting healthtab
// tables and import history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/healthtab/schema"
	"github.com/parquet-go/parquet-go"
)

// ImportRun represents a single import of an export document with metadata.
// This struct maps to the healthtab_import_runs database table.
type ImportRun struct {
	// RunID is the unique identifier for this import run
	RunID int64 `parquet:"run_id,snappy"`

	// SourcePath is the absolute path of the imported document
	SourcePath string `parquet:"source_path,snappy"`

	// StartTime is when the import began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the import completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the import in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalRecords    int32 `parquet:"total_records,snappy"`
	TotalWorkouts   int32 `parquet:"total_workouts,snappy"`
	SkippedRecords  int32 `parquet:"skipped_records,snappy"`
	SkippedWorkouts int32 `parquet:"skipped_workouts,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// TypeSummary represents the summary statistics of one record type in an import.
// This struct maps to the healthtab_type_summaries database table.
type TypeSummary struct {
	// RunID references the parent import run
	RunID int64 `parquet:"run_id,snappy"`

	// RecordType is the full metric type identifier
	RecordType string `parquet:"record_type,snappy"`

	// RecordedAt is when the summary was stored
	RecordedAt time.Time `parquet:"recorded_at,snappy"`

	ValueCount int32   `parquet:"value_count,snappy"`
	ValueMean  float64 `parquet:"value_mean,snappy"`
	ValueMin   float64 `parquet:"value_min,snappy"`
	ValueMax   float64 `parquet:"value_max,snappy"`

	// Unit is the first unit seen for the type (nullable)
	Unit *string `parquet:"unit,optional,snappy"`
}

// WriteImportRunsParquet writes a slice of ImportRun structs to a Parquet file.
func WriteImportRunsParquet(data []ImportRun, outputPath string) error {
	return writeGeneric(data, outputPath)
}

// WriteTypeSummariesParquet writes a slice of TypeSummary structs to a Parquet file.
func WriteTypeSummariesParquet(data []TypeSummary, outputPath string) error {
	return writeGeneric(data, outputPath)
}

// writeGeneric writes rows whose schema is inferred from the struct tags of T.
func writeGeneric[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertImportRunRecords converts schema.ImportRunRecord to ImportRun for Parquet export.
func ConvertImportRunRecords(records []schema.ImportRunRecord) []ImportRun {
	result := make([]ImportRun, len(records))
	for i, record := range records {
		result[i] = ImportRun{
			RunID:           record.RunID,
			SourcePath:      record.SourcePath,
			StartTime:       record.StartTime,
			EndTime:         record.EndTime,
			RunDurationMs:   record.RunDurationMs,
			TotalRecords:    record.TotalRecords,
			TotalWorkouts:   record.TotalWorkouts,
			SkippedRecords:  record.SkippedRecords,
			SkippedWorkouts: record.SkippedWorkouts,
			ConfigParams:    record.ConfigParams,
		}
	}
	return result
}

// ConvertTypeSummaryRecords converts schema.TypeSummaryRecord to TypeSummary for Parquet export.
func ConvertTypeSummaryRecords(records []schema.TypeSummaryRecord) []TypeSummary {
	result := make([]TypeSummary, len(records))
	for i, record := range records {
		result[i] = TypeSummary{
			RunID:      record.RunID,
			RecordType: record.RecordType,
			RecordedAt: record.RecordedAt,
			ValueCount: record.ValueCount,
			ValueMean:  record.ValueMean,
			ValueMin:   record.ValueMin,
			ValueMax:   record.ValueMax,
			Unit:       record.Unit,
		}
	}
	return result
}

// TableSchema derives a Parquet schema from a table. Every column is optional
// so missing cells round-trip as nulls.
func TableSchema(t *schema.Table) *parquet.Schema {
	group := make(parquet.Group, len(t.Columns))
	for _, c := range t.Columns {
		var node parquet.Node
		switch c.Kind {
		case schema.NumberColumn:
			node = parquet.Leaf(parquet.DoubleType)
		case schema.IntegerColumn:
			node = parquet.Int(64)
		default:
			node = parquet.String()
		}
		group[c.Name] = parquet.Compressed(parquet.Optional(node), &parquet.Snappy)
	}
	return parquet.NewSchema(t.Name, group)
}

// WriteTable writes a table to w with a schema derived from its columns.
func WriteTable(w io.Writer, t *schema.Table) error {
	sch := TableSchema(t)

	// Group fields are ordered by name, so map each table column to its leaf index.
	leaf := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		col, ok := sch.Lookup(c.Name)
		if !ok {
			return fmt.Errorf("column %s missing from parquet schema", c.Name)
		}
		leaf[i] = col.ColumnIndex
	}

	rows := make([]parquet.Row, len(t.Rows))
	for r, cells := range t.Rows {
		row := make(parquet.Row, len(t.Columns))
		for i, cell := range cells {
			row[leaf[i]] = cellValue(cell, t.Columns[i].Kind).Level(0, definitionLevel(cell), leaf[i])
		}
		rows[r] = row
	}

	writer := parquet.NewWriter(w, sch)
	if _, err := writer.WriteRows(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write rows to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet: %w", err)
	}
	return nil
}

// cellValue converts a cell to a parquet value, null when missing.
func cellValue(c schema.Cell, kind schema.ColumnKind) parquet.Value {
	if !c.Valid {
		return parquet.NullValue()
	}
	switch kind {
	case schema.NumberColumn:
		return parquet.DoubleValue(c.Num)
	case schema.IntegerColumn:
		return parquet.Int64Value(c.Int)
	default:
		return parquet.ByteArrayValue([]byte(c.Text))
	}
}

// definitionLevel is 1 for present optional values and 0 for nulls.
func definitionLevel(c schema.Cell) int {
	if c.Valid {
		return 1
	}
	return 0
}

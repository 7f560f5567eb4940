package schema

import "time"

// ImportCounts summarizes one extraction for the history store.
type ImportCounts struct {
	Records         int
	Workouts        int
	SkippedRecords  int
	SkippedWorkouts int
}

// TypeSummary holds summary statistics for one metric type.
type TypeSummary struct {
	Type  string
	Count int
	Mean  float64
	Min   float64
	Max   float64
	Unit  string
}

// ImportRunRecord represents a row from the healthtab_import_runs table.
type ImportRunRecord struct {
	RunID           int64
	SourcePath      string
	StartTime       time.Time
	EndTime         *time.Time
	RunDurationMs   *int32
	TotalRecords    int32
	TotalWorkouts   int32
	SkippedRecords  int32
	SkippedWorkouts int32
	ConfigParams    *string
}

// TypeSummaryRecord represents a row from the healthtab_type_summaries table.
type TypeSummaryRecord struct {
	RunID      int64
	RecordType string
	RecordedAt time.Time
	ValueCount int32
	ValueMean  float64
	ValueMin   float64
	ValueMax   float64
	Unit       *string
}

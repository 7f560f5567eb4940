package schema

// Custom string types for type safety.
type (
	// OutputMode represents the encoding of the output.
	OutputMode string

	// TableFormat selects which derived table to build or export.
	TableFormat string

	// AggKind is the reduction applied to a daily metric.
	AggKind string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv" // default
	TextOut    OutputMode = "text"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	XLSXOut    OutputMode = "xlsx"
)

// All export selectors supported.
const (
	RawFormat        TableFormat = "raw"
	DailyFormat      TableFormat = "daily"
	PivotedFormat    TableFormat = "pivoted" // default
	TimeSeriesFormat TableFormat = "time_series"
)

// All aggregation kinds supported.
const (
	AggMean AggKind = "mean"
	AggSum  AggKind = "sum"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// AllTableFormats lists the export selectors in the order they are written by convert.
var AllTableFormats = []TableFormat{PivotedFormat, TimeSeriesFormat, DailyFormat, RawFormat}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	XLSXOut:    {},
}

// ValidTableFormats lists all valid export selectors.
var ValidTableFormats = map[TableFormat]struct{}{
	RawFormat:        {},
	DailyFormat:      {},
	PivotedFormat:    {},
	TimeSeriesFormat: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// FileExtension returns the file extension used for an output mode.
func (m OutputMode) FileExtension() string {
	switch m {
	case TextOut:
		return "txt"
	default:
		return string(m)
	}
}

// DailyMetric maps one metric type to its daily column and reduction.
type DailyMetric struct {
	Type   string
	Column string
	Agg    AggKind
}

// DailyMetrics is the fixed mapping used by daily aggregation.
// Column order in the daily table follows this slice.
var DailyMetrics = []DailyMetric{
	{Type: TypePrefix + "HeartRate", Column: "heart_rate", Agg: AggMean},
	{Type: TypePrefix + "HeartRateVariabilitySDNN", Column: "hrv", Agg: AggMean},
	{Type: TypePrefix + "StepCount", Column: "steps", Agg: AggSum},
	{Type: TypePrefix + "ActiveEnergyBurned", Column: "active_calories", Agg: AggSum},
	{Type: TypePrefix + "RestingHeartRate", Column: "resting_hr", Agg: AggMean},
	{Type: TypePrefix + "WalkingHeartRateAverage", Column: "walking_hr", Agg: AggMean},
	{Type: TypePrefix + "AppleExerciseTime", Column: "exercise_minutes", Agg: AggSum},
	{Type: TypePrefix + "AppleStandHour", Column: "stand_hours", Agg: AggSum},
	{Type: TypePrefix + "DistanceWalkingRunning", Column: "distance", Agg: AggSum},
	{Type: TypePrefix + "FlightsClimbed", Column: "flights_climbed", Agg: AggSum},
}

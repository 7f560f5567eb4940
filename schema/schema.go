// Package schema has models, tables and constants for all parts of healthtab.
package schema

import (
	"strings"
	"time"
)

// TypePrefix is the identifier prefix shared by quantity measurement types.
const TypePrefix = "HKQuantityTypeIdentifier"

// Layouts used when rendering timestamps and calendar days into tables.
const (
	TimestampLayout = "2006-01-02 15:04:05-07:00"
	DateLayout      = "2006-01-02"
)

// MeasurementRecord is one normalized, timestamped, typed health observation.
// Every retained record has a non-empty Type and parsed StartTime and EndTime.
type MeasurementRecord struct {
	Type       string    `json:"type"`        // Metric type identifier
	SourceName string    `json:"source_name"` // Device or app that produced the value
	Unit       string    `json:"unit"`        // Unit of measure, may be empty
	Value      float64   `json:"value"`       // Coerced numeric value (0 when missing or malformed)
	StartTime  time.Time `json:"start_time"`  // Start of the observation
	EndTime    time.Time `json:"end_time"`    // End of the observation
}

// Date returns the calendar day of StartTime in the timestamp's own offset.
func (r MeasurementRecord) Date() string {
	return r.StartTime.Format(DateLayout)
}

// TypeSimplified returns Type with the quantity identifier prefix removed.
func (r MeasurementRecord) TypeSimplified() string {
	return SimplifyType(r.Type)
}

// SimplifyType removes the quantity identifier prefix from a metric type.
func SimplifyType(t string) string {
	return strings.TrimPrefix(t, TypePrefix)
}

// WorkoutRecord is one normalized exercise session.
// Workouts are kept apart from measurements and never merged into them.
type WorkoutRecord struct {
	ActivityType      string    `json:"activity_type"`
	Duration          float64   `json:"duration"`
	TotalDistance     float64   `json:"total_distance"`
	TotalEnergyBurned float64   `json:"total_energy_burned"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
}

// ExtractOutput is everything pulled out of one export document.
// It is the unit stored in the extraction cache.
type ExtractOutput struct {
	Records         []MeasurementRecord `json:"records"`
	Workouts        []WorkoutRecord     `json:"workouts"`
	SkippedRecords  int                 `json:"skipped_records"`
	SkippedWorkouts int                 `json:"skipped_workouts"`
}

package core

import (
	"time"

	"github.com/huangsam/healthtab/schema"
)

// Names of the pass-through tables.
const (
	RawTableName      = "raw"
	WorkoutsTableName = "workouts"
)

// RawTable lays out records one per row in document order.
func RawTable(records []schema.MeasurementRecord) (*schema.Table, error) {
	table := schema.NewTable(RawTableName,
		schema.Column{Name: "type", Kind: schema.TextColumn},
		schema.Column{Name: "sourceName", Kind: schema.TextColumn},
		schema.Column{Name: "unit", Kind: schema.TextColumn},
		schema.Column{Name: "value", Kind: schema.NumberColumn},
		schema.Column{Name: "startDate", Kind: schema.TextColumn},
		schema.Column{Name: "endDate", Kind: schema.TextColumn},
	)
	for _, r := range records {
		row := []schema.Cell{
			schema.TextCell(r.Type),
			optionalText(r.SourceName),
			optionalText(r.Unit),
			schema.NumberCell(r.Value),
			timestampCell(r.StartTime),
			timestampCell(r.EndTime),
		}
		if err := table.Append(row); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// WorkoutTable lays out workouts one per row in document order.
func WorkoutTable(workouts []schema.WorkoutRecord) (*schema.Table, error) {
	table := schema.NewTable(WorkoutsTableName,
		schema.Column{Name: "workoutActivityType", Kind: schema.TextColumn},
		schema.Column{Name: "duration", Kind: schema.NumberColumn},
		schema.Column{Name: "totalDistance", Kind: schema.NumberColumn},
		schema.Column{Name: "totalEnergyBurned", Kind: schema.NumberColumn},
		schema.Column{Name: "startDate", Kind: schema.TextColumn},
		schema.Column{Name: "endDate", Kind: schema.TextColumn},
	)
	for _, w := range workouts {
		row := []schema.Cell{
			optionalText(w.ActivityType),
			schema.NumberCell(w.Duration),
			schema.NumberCell(w.TotalDistance),
			schema.NumberCell(w.TotalEnergyBurned),
			timestampCell(w.StartTime),
			timestampCell(w.EndTime),
		}
		if err := table.Append(row); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// optionalText treats an absent attribute as a missing cell.
func optionalText(s string) schema.Cell {
	if s == "" {
		return schema.Missing
	}
	return schema.TextCell(s)
}

func timestampCell(t time.Time) schema.Cell {
	return schema.TextCell(t.Format(schema.TimestampLayout))
}

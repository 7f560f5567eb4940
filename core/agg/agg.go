// Package agg has aggregation logic for health measurement records.
package agg

import (
	"fmt"
	"math"
	"sort"

	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/schema"
	"github.com/sirupsen/logrus"
)

// Table names used by the aggregations in this package.
const (
	DailyTableName   = "daily"
	SummaryTableName = "summary"
)

// reducer accumulates values for one (metric, date) group.
type reducer struct {
	sum   float64
	count int
}

func (r *reducer) add(v float64) {
	r.sum += v
	r.count++
}

// result applies the aggregation kind to the accumulated values.
func (r *reducer) result(kind schema.AggKind) float64 {
	if kind == schema.AggMean {
		return r.sum / float64(r.count)
	}
	return r.sum
}

// DailyMetrics groups records by calendar date using schema.DailyMetrics.
// Only mapped metrics present in the data get a column. Absent metric/date
// combinations are missing cells. Rows are sorted ascending by date.
// When no mapped metric is present it returns an empty table and logs a warning.
func DailyMetrics(records []schema.MeasurementRecord, log logrus.FieldLogger) (*schema.Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to aggregate, parse an export first", contract.ErrPrecondition)
	}

	byType := make(map[string]int, len(schema.DailyMetrics))
	for i, m := range schema.DailyMetrics {
		byType[m.Type] = i
	}

	// groups[metric index][date]
	groups := make([]map[string]*reducer, len(schema.DailyMetrics))
	for _, r := range records {
		idx, ok := byType[r.Type]
		if !ok {
			continue
		}
		if groups[idx] == nil {
			groups[idx] = make(map[string]*reducer)
		}
		date := r.Date()
		red, ok := groups[idx][date]
		if !ok {
			red = &reducer{}
			groups[idx][date] = red
		}
		red.add(r.Value)
	}

	columns := []schema.Column{{Name: "date", Kind: schema.TextColumn}}
	var present []int
	dateSet := make(map[string]struct{})
	for i, g := range groups {
		if g == nil {
			continue
		}
		present = append(present, i)
		columns = append(columns, schema.Column{Name: schema.DailyMetrics[i].Column, Kind: schema.NumberColumn})
		for date := range g {
			dateSet[date] = struct{}{}
		}
	}

	if len(present) == 0 {
		log.Warn("No metrics found for daily aggregation")
		return schema.NewTable(DailyTableName), nil
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates) // ISO dates sort lexically

	table := schema.NewTable(DailyTableName, columns...)
	for _, date := range dates {
		row := make([]schema.Cell, 0, len(columns))
		row = append(row, schema.TextCell(date))
		for _, i := range present {
			red, ok := groups[i][date]
			if !ok {
				row = append(row, schema.Missing)
				continue
			}
			row = append(row, schema.NumberCell(red.result(schema.DailyMetrics[i].Agg)))
		}
		if err := table.Append(row); err != nil {
			return nil, err
		}
	}

	log.Infof("Created daily aggregation with %d days", table.Len())
	return table, nil
}

// typeStats holds the running summary of one record type.
type typeStats struct {
	count    int
	sum      float64
	min, max float64
	unit     string
}

// Summary computes count, mean, min and max of value per record type, rounded
// to 2 decimal places, plus the first non-empty unit seen in document order.
// Rows are sorted ascending by type.
func Summary(records []schema.MeasurementRecord) (*schema.Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to summarize, parse an export first", contract.ErrPrecondition)
	}

	stats := make(map[string]*typeStats)
	for _, r := range records {
		s, ok := stats[r.Type]
		if !ok {
			s = &typeStats{min: r.Value, max: r.Value}
			stats[r.Type] = s
		}
		s.count++
		s.sum += r.Value
		s.min = math.Min(s.min, r.Value)
		s.max = math.Max(s.max, r.Value)
		if s.unit == "" {
			s.unit = r.Unit
		}
	}

	types := make([]string, 0, len(stats))
	for t := range stats {
		types = append(types, t)
	}
	sort.Strings(types)

	table := schema.NewTable(SummaryTableName,
		schema.Column{Name: "type", Kind: schema.TextColumn},
		schema.Column{Name: "value_count", Kind: schema.IntegerColumn},
		schema.Column{Name: "value_mean", Kind: schema.NumberColumn},
		schema.Column{Name: "value_min", Kind: schema.NumberColumn},
		schema.Column{Name: "value_max", Kind: schema.NumberColumn},
		schema.Column{Name: "unit_first", Kind: schema.TextColumn},
	)
	for _, t := range types {
		s := stats[t]
		unit := schema.Missing
		if s.unit != "" {
			unit = schema.TextCell(s.unit)
		}
		row := []schema.Cell{
			schema.TextCell(t),
			schema.IntCell(int64(s.count)),
			schema.NumberCell(Round2(s.sum / float64(s.count))),
			schema.NumberCell(Round2(s.min)),
			schema.NumberCell(Round2(s.max)),
			unit,
		}
		if err := table.Append(row); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// TypeSummaries converts a summary table into typed rows for the history store.
func TypeSummaries(summary *schema.Table) []schema.TypeSummary {
	if summary.Empty() {
		return nil
	}
	out := make([]schema.TypeSummary, 0, summary.Len())
	for _, row := range summary.Rows {
		out = append(out, schema.TypeSummary{
			Type:  row[0].Text,
			Count: int(row[1].Int),
			Mean:  row[2].Num,
			Min:   row[3].Num,
			Max:   row[4].Num,
			Unit:  row[5].Text,
		})
	}
	return out
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

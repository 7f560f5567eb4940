// Package pivot reshapes flat measurement records into wide tables with one
// column per simplified record type.
package pivot

import (
	"fmt"
	"sort"

	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/schema"
	"github.com/sirupsen/logrus"
)

// Table names and key columns of the pivots.
const (
	SequentialTableName = "pivoted"
	TimeSeriesTableName = "time_series"

	SequenceColumn  = "sequence"
	TimestampColumn = "timestamp"
)

// sortedByStart returns a copy of records stably sorted by start instant.
// Records sharing an instant keep document order.
func sortedByStart(records []schema.MeasurementRecord) []schema.MeasurementRecord {
	sorted := make([]schema.MeasurementRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted
}

// typeColumns returns the sorted distinct simplified types and their column positions.
// Position 0 is reserved for the key column.
func typeColumns(records []schema.MeasurementRecord) ([]string, map[string]int) {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.TypeSimplified()] = struct{}{}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)

	pos := make(map[string]int, len(types))
	for i, t := range types {
		pos[t] = i + 1
	}
	return types, pos
}

// newWideTable builds the table header: a key column followed by one number column per type.
func newWideTable(name string, key schema.Column, types []string) *schema.Table {
	cols := make([]schema.Column, 0, len(types)+1)
	cols = append(cols, key)
	for _, t := range types {
		cols = append(cols, schema.Column{Name: t, Kind: schema.NumberColumn})
	}
	return schema.NewTable(name, cols...)
}

// Sequential pivots records by per-type occurrence order. Each record's sequence
// is its 0-based position among records of the same simplified type after a
// stable sort by start time. One row per sequence, ascending. When two records
// land on the same (type, sequence) the first in sort order wins.
func Sequential(records []schema.MeasurementRecord, log logrus.FieldLogger) (*schema.Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to pivot, parse an export first", contract.ErrPrecondition)
	}

	sorted := sortedByStart(records)
	types, pos := typeColumns(sorted)
	table := newWideTable(SequentialTableName, schema.Column{Name: SequenceColumn, Kind: schema.IntegerColumn}, types)

	counters := make(map[string]int, len(types))
	for _, r := range sorted {
		t := r.TypeSimplified()
		seq := counters[t]
		counters[t]++

		for len(table.Rows) <= seq {
			row := make([]schema.Cell, len(table.Columns))
			row[0] = schema.IntCell(int64(len(table.Rows)))
			table.Rows = append(table.Rows, row)
		}
		if cell := &table.Rows[seq][pos[t]]; !cell.Valid {
			*cell = schema.NumberCell(r.Value)
		}
	}

	log.Infof("Created pivoted dataframe with %d rows and %d record types", table.Len(), len(types))
	return table, nil
}

// cellMean accumulates values sharing a timestamp and type.
type cellMean struct {
	sum   float64
	count int
}

// TimeSeries pivots records by exact start instant. One row per distinct
// instant, ascending, keyed by the timestamp column. Records sharing an instant
// and type are averaged. Each timestamp renders in the offset of the first
// record seen at that instant.
func TimeSeries(records []schema.MeasurementRecord, log logrus.FieldLogger) (*schema.Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to pivot, parse an export first", contract.ErrPrecondition)
	}

	sorted := sortedByStart(records)
	types, pos := typeColumns(sorted)
	table := newWideTable(TimeSeriesTableName, schema.Column{Name: TimestampColumn, Kind: schema.TextColumn}, types)

	var sums [][]cellMean
	rowOf := make(map[int64]int)
	for _, r := range sorted {
		key := r.StartTime.UnixNano()
		idx, ok := rowOf[key]
		if !ok {
			idx = len(table.Rows)
			rowOf[key] = idx
			row := make([]schema.Cell, len(table.Columns))
			row[0] = schema.TextCell(r.StartTime.Format(schema.TimestampLayout))
			table.Rows = append(table.Rows, row)
			sums = append(sums, make([]cellMean, len(table.Columns)))
		}
		acc := &sums[idx][pos[r.TypeSimplified()]]
		acc.sum += r.Value
		acc.count++
	}

	for i, row := range table.Rows {
		for j := 1; j < len(row); j++ {
			if acc := sums[i][j]; acc.count > 0 {
				row[j] = schema.NumberCell(acc.sum / float64(acc.count))
			}
		}
	}

	log.Infof("Created time series dataframe with %d timestamps", table.Len())
	return table, nil
}

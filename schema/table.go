package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ColumnKind is the value type held by a table column.
type ColumnKind int

// Column kinds.
const (
	TextColumn ColumnKind = iota
	NumberColumn
	IntegerColumn
)

// Column is a named, typed column of a Table.
type Column struct {
	Name string
	Kind ColumnKind
}

// Cell is a single table value. A cell with Valid=false is missing.
type Cell struct {
	Valid bool
	Text  string
	Num   float64
	Int   int64
}

// Missing is the absent cell.
var Missing = Cell{}

// TextCell returns a present text cell.
func TextCell(s string) Cell { return Cell{Valid: true, Text: s} }

// NumberCell returns a present numeric cell.
func NumberCell(v float64) Cell { return Cell{Valid: true, Num: v} }

// IntCell returns a present integer cell.
func IntCell(v int64) Cell { return Cell{Valid: true, Int: v} }

// Value returns the cell as a Go value for the given column kind, or nil when missing.
func (c Cell) Value(kind ColumnKind) any {
	if !c.Valid {
		return nil
	}
	switch kind {
	case NumberColumn:
		return c.Num
	case IntegerColumn:
		return c.Int
	default:
		return c.Text
	}
}

// Format renders the cell for delimited and text output.
// A negative precision renders numbers in their shortest round-trip form,
// keeping a trailing ".0" for integral values.
func (c Cell) Format(kind ColumnKind, precision int) string {
	if !c.Valid {
		return ""
	}
	switch kind {
	case NumberColumn:
		return FormatNumber(c.Num, precision)
	case IntegerColumn:
		return strconv.FormatInt(c.Int, 10)
	default:
		return c.Text
	}
}

// FormatNumber renders a float with the given precision, or shortest form when precision < 0.
func FormatNumber(v float64, precision int) string {
	if precision >= 0 {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Table is a derived tabular projection of the record set.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]Cell
}

// NewTable creates an empty table with the given columns.
func NewTable(name string, columns ...Column) *Table {
	return &Table{Name: name, Columns: columns}
}

// Append adds a row. The row must have one cell per column.
func (t *Table) Append(row []Cell) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("table %s: row has %d cells, want %d", t.Name, len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table is absent, has no columns or has no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Columns) == 0 || len(t.Rows) == 0
}

// ColumnNames returns the header row.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of a named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// StringRows renders every row with Cell.Format.
func (t *Table) StringRows(precision int) [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]string, len(row))
		for j, cell := range row {
			rec[j] = cell.Format(t.Columns[j].Kind, precision)
		}
		out[i] = rec
	}
	return out
}

// Record is one table row keyed by column name. It encodes to a JSON object
// whose fields follow the table's column order.
type Record struct {
	names  []string
	values []any
}

// Get returns the value of a named column, or nil when missing or absent.
func (r Record) Get(name string) any {
	for i, n := range r.names {
		if n == name {
			return r.values[i]
		}
	}
	return nil
}

// Keys returns the column names in order.
func (r Record) Keys() []string { return r.names }

// MarshalJSON writes the fields in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Records returns rows as column-ordered records with missing cells as nil.
func (t *Table) Records() []Record {
	names := t.ColumnNames()
	out := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		values := make([]any, len(row))
		for j, cell := range row {
			values[j] = cell.Value(t.Columns[j].Kind)
		}
		out[i] = Record{names: names, values: values}
	}
	return out
}

// Head returns a copy of the table truncated to at most n rows. n <= 0 keeps all rows.
func (t *Table) Head(n int) *Table {
	clone := &Table{Name: t.Name, Columns: t.Columns, Rows: t.Rows}
	if n > 0 && n < len(t.Rows) {
		clone.Rows = t.Rows[:n]
	}
	return clone
}

// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/internal/parquet"
	"github.com/huangsam/healthtab/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/xuri/excelize/v2"
)

// ErrBinaryStdout is returned when a binary encoding has no destination file.
var ErrBinaryStdout = errors.New("binary output requires --output-file")

// WriteTable encodes a table to w using the configured output mode.
func WriteTable(w io.Writer, t *schema.Table, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, t.Records())
	case schema.TextOut:
		return writeTableText(w, t, cfg)
	case schema.ParquetOut:
		return parquet.WriteTable(w, t)
	case schema.XLSXOut:
		return writeTableXLSX(w, t)
	default:
		return writeTableCSV(w, t, cfg)
	}
}

// WriteTableFile writes a table to outputFile, or stdout when it is empty.
// Binary encodings refuse to write to stdout.
func WriteTableFile(outputFile string, t *schema.Table, cfg *contract.Config) error {
	if outputFile == "" && isBinary(cfg.Output) {
		return fmt.Errorf("%w: %s", ErrBinaryStdout, cfg.Output)
	}
	msg := fmt.Sprintf("Wrote %s %s", t.Name, cfg.Output)
	return writeWithFile(outputFile, func(w io.Writer) error {
		return WriteTable(w, t, cfg)
	}, msg)
}

// PrintTable writes a titled table in the configured mode. Binary modes
// fall back to text since they cannot be shown on a terminal.
func PrintTable(w io.Writer, title string, t *schema.Table, cfg *contract.Config) error {
	display := cfg
	if isBinary(cfg.Output) {
		display = cfg.Clone()
		display.Output = schema.TextOut
	}
	if display.Output == schema.TextOut && title != "" {
		if _, err := contract.HeaderColor.Fprintf(w, "\n%s:\n", title); err != nil {
			return err
		}
	}
	return WriteTable(w, t, display)
}

func isBinary(mode schema.OutputMode) bool {
	return mode == schema.ParquetOut || mode == schema.XLSXOut
}

// writeTableCSV writes a header and one record per row, with no index column.
func writeTableCSV(w io.Writer, t *schema.Table, cfg *contract.Config) error {
	comma := cfg.Delimiter
	if comma == 0 {
		comma = ','
	}
	return writeCSVWithHeader(w, comma, t.ColumnNames(), func(csvWriter *csv.Writer) error {
		for _, rec := range t.StringRows(cfg.Precision) {
			if err := csvWriter.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeTableText renders the human-readable table.
func writeTableText(w io.Writer, t *schema.Table, cfg *contract.Config) error {
	view := t.Head(cfg.Limit)
	cellWidth := getMaxCellWidth(cfg, len(t.Columns))

	table := tablewriter.NewWriter(w)
	table.Header(t.ColumnNames())
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := view.StringRows(cfg.Precision)
	for _, row := range data {
		for i := range row {
			row[i] = contract.TruncateCell(row[i], cellWidth)
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d rows\n", view.Len(), t.Len())
	return err
}

// writeTableXLSX writes a single-sheet workbook named after the table.
func writeTableXLSX(w io.Writer, t *schema.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := t.Name
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, name := range t.ColumnNames() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		for i, c := range row {
			v := c.Value(t.Columns[i].Kind)
			if v == nil {
				continue // missing cells stay blank
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

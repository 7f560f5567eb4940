package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/internal/parquet"
)

// ErrHistoryDisabled means a history command ran without a history backend.
var ErrHistoryDisabled = errors.New("history tracking is disabled. Set --history-backend")

// HistoryExportFiles returns the Parquet files written for an export base name.
func HistoryExportFiles(outputFile string) (runsFile, summariesFile string) {
	return outputFile + ".import_runs.parquet", outputFile + ".type_summaries.parquet"
}

// ExecuteHistoryExport writes every import run and type summary in store to Parquet files
// named after outputFile and reports progress to out.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string, out io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return ErrHistoryDisabled
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no import history found to export")
	}

	_, _ = fmt.Fprintf(out, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(out, "Total import runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(out, "Total type summaries: %d\n", status.TableSizes[typeSummariesTable])

	runs, err := store.GetAllImportRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve import runs: %w", err)
	}
	summaries, err := store.GetAllTypeSummaries()
	if err != nil {
		return fmt.Errorf("failed to retrieve type summaries: %w", err)
	}

	runsFile, summariesFile := HistoryExportFiles(outputFile)

	parquetRuns := parquet.ConvertImportRunRecords(runs)
	if err := parquet.WriteImportRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write import runs: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d import runs to: %s\n", len(parquetRuns), runsFile)

	parquetSummaries := parquet.ConvertTypeSummaryRecords(summaries)
	if err := parquet.WriteTypeSummariesParquet(parquetSummaries, summariesFile); err != nil {
		return fmt.Errorf("failed to write type summaries: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d type summaries to: %s\n", len(parquetSummaries), summariesFile)

	return nil
}

// Package core has core logic for parsing exports and deriving tables from them.
package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/healthtab/core/agg"
	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/internal/outwriter"
	"github.com/huangsam/healthtab/schema"
	"github.com/sirupsen/logrus"
)

// SummaryTitle heads the record type summary in terminal output.
const SummaryTitle = "Record Type Summary"

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, log logrus.FieldLogger) error

// ExecuteExport parses the export and writes one table selected by cfg.Format.
// It serves as the main entry point for the 'export' command.
func ExecuteExport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, log logrus.FieldLogger) error {
	p, err := Import(ctx, cfg, mgr, log)
	if err != nil {
		return err
	}
	_, err = p.Export(string(cfg.Format), cfg.OutputFile)
	return err
}

// ExecuteConvert parses the export once, writes every table into cfg.OutputDir
// as health_data_<format>.<ext> and prints the record type summary.
func ExecuteConvert(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, log logrus.FieldLogger) error {
	p, err := Import(ctx, cfg, mgr, log)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	for _, format := range schema.AllTableFormats {
		dest := filepath.Join(cfg.OutputDir, ConvertFileName(format, cfg.Output))
		if _, err := p.Export(string(format), dest); err != nil {
			return err
		}
	}

	if len(p.Records()) == 0 {
		log.Warn("No records found, skipping summary")
		return nil
	}
	summary, err := p.Summary()
	if err != nil {
		return err
	}
	display := cfg.Clone()
	display.Output = schema.TextOut
	display.Limit = 0
	return outwriter.PrintTable(os.Stdout, SummaryTitle, summary, display)
}

// ExecuteSummary parses the export and writes the record type summary.
func ExecuteSummary(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, log logrus.FieldLogger) error {
	p, err := Import(ctx, cfg, mgr, log)
	if err != nil {
		return err
	}
	summary, err := p.Summary()
	if err != nil {
		return err
	}
	return writeOrPrint(SummaryTitle, summary, cfg)
}

// ExecuteWorkouts parses the export and writes the workouts table.
func ExecuteWorkouts(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, log logrus.FieldLogger) error {
	p, err := Import(ctx, cfg, mgr, log)
	if err != nil {
		return err
	}
	workouts, err := p.WorkoutsTable()
	if err != nil {
		return err
	}
	if workouts.Empty() {
		log.Warn("No workouts found")
		return nil
	}
	return writeOrPrint("Workouts", workouts, cfg)
}

// ConvertFileName names the file convert writes for a table.
func ConvertFileName(format schema.TableFormat, output schema.OutputMode) string {
	return fmt.Sprintf("health_data_%s.%s", format, output.FileExtension())
}

// writeOrPrint writes to cfg.OutputFile when set, otherwise prints to stdout.
func writeOrPrint(title string, t *schema.Table, cfg *contract.Config) error {
	if cfg.OutputFile != "" {
		return outwriter.WriteTableFile(cfg.OutputFile, t, cfg)
	}
	return outwriter.PrintTable(os.Stdout, title, t, cfg)
}

// Import builds a pipeline for cfg.InputPath, parses it and records the
// import in the history store when one is configured.
func Import(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, log logrus.FieldLogger) (*Pipeline, error) {
	opts := []Option{WithLogger(log), WithOutput(cfg)}
	var history contract.HistoryStore
	if mgr != nil {
		if store := mgr.GetExtractStore(); store != nil {
			opts = append(opts, WithCache(store))
		}
		history = mgr.GetHistoryStore()
	}

	p, err := NewPipeline(cfg.InputPath, opts...)
	if err != nil {
		return nil, err
	}

	// --- 0. Begin Import Tracking (if configured) ---
	if history != nil {
		runID, err := history.BeginImport(p.Path(), time.Now(), cfg.Params())
		if err != nil {
			log.WithError(err).Warn("Import tracking initialization failed")
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 1. Parse ---
	if _, err := p.Parse(ctx); err != nil {
		return nil, err
	}

	// --- 2. End Import Tracking ---
	if runID := runIDFromContext(ctx); history != nil && runID > 0 {
		recordTypeSummaries(ctx, history, p, log)
		if err := history.EndImport(runID, time.Now(), p.Counts()); err != nil {
			log.WithError(err).Warn("Failed to finalize import tracking")
		}
	}

	return p, nil
}

// recordTypeSummaries stores one summary row per record type for the current run.
func recordTypeSummaries(ctx context.Context, history contract.HistoryStore, p *Pipeline, log logrus.FieldLogger) {
	if len(p.Records()) == 0 {
		return
	}
	summary, err := p.Summary()
	if err != nil {
		log.WithError(err).Warn("Failed to summarize records for history")
		return
	}

	runID := runIDFromContext(ctx)
	now := time.Now()
	for _, s := range agg.TypeSummaries(summary) {
		if err := history.RecordTypeSummary(runID, now, s); err != nil {
			log.WithError(err).WithField("type", s.Type).Warn("Import tracking failed for RecordTypeSummary")
		}
	}
}

// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/healthtab/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetExtractStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking import runs and per-type summaries.
type HistoryStore interface {
	// BeginImport creates a new import run and returns its unique ID
	BeginImport(sourcePath string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndImport updates the import run with completion data
	EndImport(runID int64, endTime time.Time, counts schema.ImportCounts) error

	// RecordTypeSummary stores the summary statistics of one metric type
	RecordTypeSummary(runID int64, recordedAt time.Time, summary schema.TypeSummary) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllImportRuns returns every import run ordered by ID
	GetAllImportRuns() ([]schema.ImportRunRecord, error)

	// GetAllTypeSummaries returns every stored type summary ordered by run and type
	GetAllTypeSummaries() ([]schema.TypeSummaryRecord, error)

	// Close closes the underlying connection
	Close() error
}

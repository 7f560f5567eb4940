package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/schema"
)

// Table names for import history.
const (
	importRunsTable    = "healthtab_import_runs"
	typeSummariesTable = "healthtab_type_summaries"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{importRunsTable, typeSummariesTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the backend and makes sure the history tables exist.
// NoneBackend yields a store that accepts every call and keeps nothing.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the import history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	queries := []string{
		getCreateImportRunsQuery(backend),
		getCreateTypeSummariesQuery(backend),
	}
	for i, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", historyTables[i], err)
		}
	}
	return nil
}

// getCreateImportRunsQuery returns the CREATE TABLE query for healthtab_import_runs.
func getCreateImportRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(importRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				source_path VARCHAR(1024) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_records INT NOT NULL DEFAULT 0,
				total_workouts INT NOT NULL DEFAULT 0,
				skipped_records INT NOT NULL DEFAULT 0,
				skipped_workouts INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				source_path TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_records INT NOT NULL DEFAULT 0,
				total_workouts INT NOT NULL DEFAULT 0,
				skipped_records INT NOT NULL DEFAULT 0,
				skipped_workouts INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				source_path TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_records INTEGER NOT NULL DEFAULT 0,
				total_workouts INTEGER NOT NULL DEFAULT 0,
				skipped_records INTEGER NOT NULL DEFAULT 0,
				skipped_workouts INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateTypeSummariesQuery returns the CREATE TABLE query for healthtab_type_summaries.
func getCreateTypeSummariesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(typeSummariesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				record_type VARCHAR(255) NOT NULL,
				recorded_at DATETIME(6) NOT NULL,
				value_count INT NOT NULL,
				value_mean DOUBLE NOT NULL,
				value_min DOUBLE NOT NULL,
				value_max DOUBLE NOT NULL,
				unit VARCHAR(64),
				PRIMARY KEY (run_id, record_type)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				record_type TEXT NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL,
				value_count INT NOT NULL,
				value_mean DOUBLE PRECISION NOT NULL,
				value_min DOUBLE PRECISION NOT NULL,
				value_max DOUBLE PRECISION NOT NULL,
				unit TEXT,
				PRIMARY KEY (run_id, record_type)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				record_type TEXT NOT NULL,
				recorded_at TEXT NOT NULL,
				value_count INTEGER NOT NULL,
				value_mean REAL NOT NULL,
				value_min REAL NOT NULL,
				value_max REAL NOT NULL,
				unit TEXT,
				PRIMARY KEY (run_id, record_type)
			);
		`, quotedTableName)
	}
}

// placeholders returns n comma-separated bind parameters for the backend.
func placeholders(backend schema.DatabaseBackend, n int) string {
	params := make([]string, n)
	for i := range params {
		params[i] = placeholder(backend, i+1)
	}
	return strings.Join(params, ", ")
}

// BeginImport creates a new import run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginImport(sourcePath string, startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(importRunsTable, hs.backend)
	args := []any{sourcePath, formatTime(startTime, hs.backend), string(configJSON)}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (source_path, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (source_path, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		if result, err = hs.db.Exec(query, args...); err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert import run: %w", err)
	}
	return runID, nil
}

// EndImport stores the end time, duration and counts of an import run.
func (hs *HistoryStoreImpl) EndImport(runID int64, endTime time.Time, counts schema.ImportCounts) error {
	if hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(importRunsTable, hs.backend)

	var startTime storedTime
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(hs.backend, 1))
	if err := hs.db.QueryRow(query, runID).Scan(&startTime); err != nil {
		return fmt.Errorf("failed to get start_time for import run %d: %w", runID, err)
	}
	durationMs := endTime.Sub(startTime.Time).Milliseconds()

	var update string
	if hs.backend == schema.PostgreSQLBackend {
		update = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_records = $3, total_workouts = $4,
			skipped_records = $5, skipped_workouts = $6 WHERE run_id = $7`, quotedTableName)
	} else {
		update = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_records = ?, total_workouts = ?,
			skipped_records = ?, skipped_workouts = ? WHERE run_id = ?`, quotedTableName)
	}
	_, err := hs.db.Exec(update, formatTime(endTime, hs.backend), durationMs,
		counts.Records, counts.Workouts, counts.SkippedRecords, counts.SkippedWorkouts, runID)
	if err != nil {
		return fmt.Errorf("failed to update import run: %w", err)
	}
	return nil
}

// RecordTypeSummary stores the summary statistics of one record type for a run.
func (hs *HistoryStoreImpl) RecordTypeSummary(runID int64, recordedAt time.Time, summary schema.TypeSummary) error {
	if hs.db == nil {
		return nil
	}

	var unit any
	if summary.Unit != "" {
		unit = summary.Unit
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, record_type, recorded_at, value_count, value_mean, value_min, value_max, unit)
		VALUES (%s)`, quoteTableName(typeSummariesTable, hs.backend), placeholders(hs.backend, 8))
	_, err := hs.db.Exec(query, runID, summary.Type, formatTime(recordedAt, hs.backend),
		summary.Count, summary.Mean, summary.Min, summary.Max, unit)
	if err != nil {
		return fmt.Errorf("failed to insert type summary for %s: %w", summary.Type, err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(importRunsTable, hs.backend)

	query := fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(total_records), 0) FROM %s", quotedRuns)
	if err := hs.db.QueryRow(query).Scan(&status.TotalRuns, &status.TotalRecordsSeen); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest storedTime
		query = fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(query).Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		query = fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)
		if err := hs.db.QueryRow(query).Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.LastRunTime = last.Time
		status.OldestRunTime = oldest.Time
	}

	for _, table := range historyTables {
		var count int64
		query = fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllImportRuns retrieves every import run ordered by ID.
func (hs *HistoryStoreImpl) GetAllImportRuns() ([]schema.ImportRunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, source_path, start_time, end_time, run_duration_ms, total_records,
		total_workouts, skipped_records, skipped_workouts, config_params FROM %s ORDER BY run_id`,
		quoteTableName(importRunsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ImportRunRecord
	for rows.Next() {
		var record schema.ImportRunRecord
		var start, end storedTime
		if err := rows.Scan(&record.RunID, &record.SourcePath, &start, &end, &record.RunDurationMs,
			&record.TotalRecords, &record.TotalWorkouts, &record.SkippedRecords, &record.SkippedWorkouts,
			&record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		record.StartTime = start.Time
		if end.Valid {
			endTime := end.Time
			record.EndTime = &endTime
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import runs: %w", err)
	}
	return results, nil
}

// GetAllTypeSummaries retrieves every stored type summary ordered by run and type.
func (hs *HistoryStoreImpl) GetAllTypeSummaries() ([]schema.TypeSummaryRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, record_type, recorded_at, value_count, value_mean, value_min, value_max, unit
		FROM %s ORDER BY run_id, record_type`, quoteTableName(typeSummariesTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query type summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.TypeSummaryRecord
	for rows.Next() {
		var record schema.TypeSummaryRecord
		var recordedAt storedTime
		if err := rows.Scan(&record.RunID, &record.RecordType, &recordedAt, &record.ValueCount,
			&record.ValueMean, &record.ValueMin, &record.ValueMax, &record.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan type summary: %w", err)
		}
		record.RecordedAt = recordedAt.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating type summaries: %w", err)
	}
	return results, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.Format(time.RFC3339Nano)
	}
	return t
}

// storedTime scans a timestamp column from any backend. SQLite keeps
// RFC 3339 text, MySQL without parseTime returns raw DATETIME bytes.
type storedTime struct {
	Time  time.Time
	Valid bool
}

// mysqlDateTime is the text form of a DATETIME(6) column.
const mysqlDateTime = "2006-01-02 15:04:05.999999"

// Scan implements sql.Scanner.
func (st *storedTime) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		st.Time, st.Valid = time.Time{}, false
		return nil
	case time.Time:
		st.Time, st.Valid = v, true
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}

	for _, layout := range []string{time.RFC3339Nano, mysqlDateTime} {
		if t, err := time.Parse(layout, raw); err == nil {
			st.Time, st.Valid = t, true
			return nil
		}
	}
	return fmt.Errorf("failed to parse stored time %q", raw)
}

//go:build basic

// Package integration contains integration tests for healthtab.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConvertWritesEveryTable runs convert on the sample export and checks the files it writes.
func TestConvertWritesEveryTable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	outDir := filepath.Join(t.TempDir(), "out")

	output, err := runHealthtab(t, t.TempDir(), "convert", fixturePath(t), "--output-dir", outDir, "--color", "no")
	require.NoError(t, err)
	assert.Contains(t, output, "Record Type Summary")

	for _, name := range []string{
		"health_data_raw.csv",
		"health_data_daily.csv",
		"health_data_pivoted.csv",
		"health_data_time_series.csv",
	} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	daily, err := os.ReadFile(filepath.Join(outDir, "health_data_daily.csv"))
	require.NoError(t, err)
	assert.Equal(t, "date,heart_rate,steps\n2024-03-01,70.0,30.0\n2024-03-02,64.0,\n", string(daily))
}

// TestExportFromEnvironment configures the export through HEALTHTAB_* variables.
func TestExportFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HEALTHTAB_DELIMITER", ";")
	t.Setenv("HEALTHTAB_PRECISION", "2")
	dest := filepath.Join(t.TempDir(), "pivoted.csv")

	_, err := runHealthtab(t, t.TempDir(), "export", fixturePath(t), "--format", "pivoted", "--output-file", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "sequence;BodyMass;HeartRate;StepCount\n0;0.00;70.00;10.00\n1;;64.00;20.00\n", string(data))
}

// TestExportRejectsUnknownFormat checks that a bad selector fails without writing a file.
func TestExportRejectsUnknownFormat(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dest := filepath.Join(t.TempDir(), "weekly.csv")

	output, err := runHealthtab(t, t.TempDir(), "export", fixturePath(t), "--format", "weekly", "--output-file", dest)
	require.Error(t, err)
	assert.Contains(t, output, "unsupported format")
	assert.NoFileExists(t, dest)
}

// TestExportNormalizesFormatFlag accepts a --format value in any case.
func TestExportNormalizesFormatFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dest := filepath.Join(t.TempDir(), "daily.csv")

	_, err := runHealthtab(t, t.TempDir(), "export", fixturePath(t), "--format", " Daily ", "--output-file", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "date,heart_rate,steps\n2024-03-01,70.0,30.0\n2024-03-02,64.0,\n", string(data))
}

// TestProfilingStartsAfterValidation checks that invalid flags fail before profiles are created.
func TestProfilingStartsAfterValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	_, err := runHealthtab(t, dir, "export", fixturePath(t), "--format", "weekly", "--profile", "run")
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "run.cpu.prof"))
	assert.NoFileExists(t, filepath.Join(dir, "run.mem.prof"))

	_, err = runHealthtab(t, dir, "export", fixturePath(t), "--format", "daily", "--output-file", filepath.Join(dir, "daily.csv"), "--profile", "run")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "run.cpu.prof"))
	assert.FileExists(t, filepath.Join(dir, "run.mem.prof"))
}

// TestHistoryWithSQLite records imports in a SQLite history store and exports them.
func TestHistoryWithSQLite(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Setenv("HEALTHTAB_HISTORY_BACKEND", "sqlite")
	t.Setenv("HEALTHTAB_HISTORY_DB_CONNECT", filepath.Join(dir, "history.db"))
	t.Setenv("HEALTHTAB_CACHE_BACKEND", "sqlite")
	t.Setenv("HEALTHTAB_CACHE_DB_CONNECT", filepath.Join(dir, "cache.db"))

	_, err := runHealthtab(t, dir, "history", "migrate")
	require.NoError(t, err)

	for range 2 {
		_, err = runHealthtab(t, dir, "summary", fixturePath(t), "--output", "text")
		require.NoError(t, err)
	}

	output, err := runHealthtab(t, dir, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Total Runs: 2")
	assert.Contains(t, output, "Total Records Seen: 10")

	output, err = runHealthtab(t, dir, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Total Entries: 1")

	_, err = runHealthtab(t, dir, "history", "export", "--output-file", filepath.Join(dir, "history"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "history.import_runs.parquet"))
	assert.FileExists(t, filepath.Join(dir, "history.type_summaries.parquet"))

	_, err = runHealthtab(t, dir, "history", "clear")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "history.db"))
}

// TestVersion checks the version banner.
func TestVersion(t *testing.T) {
	output, err := runHealthtab(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, output, "healthtab CLI")
}

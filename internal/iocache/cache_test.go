package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/huangsam/healthtab/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals lets a test call InitStores again and leaves the manager empty afterwards.
func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	t.Cleanup(func() {
		CloseStores()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite cache and history", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		historyPath := filepath.Join(dir, "history.db")

		err := InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath)
		require.NoError(t, err)

		assert.NotNil(t, Manager.GetExtractStore())
		assert.NotNil(t, Manager.GetHistoryStore())

		CloseStores()
		_, err = os.Stat(cachePath)
		assert.NoError(t, err, "cache database file should be created")
		_, err = os.Stat(historyPath)
		assert.NoError(t, err, "history database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetGlobals(t)
		dbPath := filepath.Join(t.TempDir(), "cache.db")

		for range 3 {
			assert.NoError(t, InitStores(schema.SQLiteBackend, dbPath, "", ""))
		}
		CloseStores()
		CloseStores()
	})

	t.Run("disabled backends give nil stores", func(t *testing.T) {
		resetGlobals(t)

		require.NoError(t, InitStores(schema.NoneBackend, "", "", ""))
		assert.Nil(t, Manager.GetExtractStore())
		assert.Nil(t, Manager.GetHistoryStore())
	})

	t.Run("connection failure is reported", func(t *testing.T) {
		resetGlobals(t)

		err := InitStores(schema.MySQLBackend, "invalid://connection", "", "")
		assert.ErrorContains(t, err, "failed to initialize extraction caching")
	})
}

func TestNoneBackendCacheStore(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("test_key")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, store.Set("test_key", []byte("test_value"), 1, 123456789))

	_, _, _, err = store.Get("test_key")
	assert.ErrorIs(t, err, sql.ErrNoRows, "Set is a no-op on the none backend")

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"valid simple name", "extract_cache", false},
		{"valid name with numbers", "test_table_123", false},
		{"valid name starting with underscore", "_test_table", false},
		{"valid mixed case", "TestTable_123", false},
		{"empty name", "", true},
		{"starts with number", "123_table", true},
		{"contains dash", "test-table", true},
		{"contains space", "test table", true},
		{"sql injection attempt", "test'; DROP TABLE users; --", true},
		{"contains dot", "test.table", true},
		{"unicode", "test_表", true},
		{"very long name", strings.Repeat("a", 1000), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"extract_cache"`, quoteTableName("extract_cache", schema.SQLiteBackend))
	assert.Equal(t, "`extract_cache`", quoteTableName("extract_cache", schema.MySQLBackend))
	assert.Equal(t, `"extract_cache"`, quoteTableName("extract_cache", schema.PostgreSQLBackend))
	assert.Equal(t, `"extract_cache"`, quoteTableName("extract_cache", schema.NoneBackend))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "?", placeholder(schema.SQLiteBackend, 1))
	assert.Equal(t, "?", placeholder(schema.MySQLBackend, 3))
	assert.Equal(t, "$3", placeholder(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "?, ?", placeholders(schema.SQLiteBackend, 2))
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "sqlite", driverName(schema.SQLiteBackend))
	assert.Equal(t, "mysql", driverName(schema.MySQLBackend))
	assert.Equal(t, "pgx", driverName(schema.PostgreSQLBackend))
}

func TestSQLiteCacheStore(t *testing.T) {
	newStore := func(t *testing.T) *CacheStoreImpl {
		t.Helper()
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store.(*CacheStoreImpl)
	}

	t.Run("set and get", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("key", []byte("payload"), 1, 1234567890))

		value, version, ts, err := store.Get("key")
		require.NoError(t, err)
		assert.Equal(t, "payload", string(value))
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1234567890), ts)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set("key", []byte("initial"), 1, 1000))
		require.NoError(t, store.Set("key", []byte("updated"), 2, 2000))

		value, version, ts, err := store.Get("key")
		require.NoError(t, err)
		assert.Equal(t, "updated", string(value))
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(2000), ts)
	})

	t.Run("miss", func(t *testing.T) {
		store := newStore(t)
		_, _, _, err := store.Get("absent")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("status", func(t *testing.T) {
		store := newStore(t)

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.Equal(t, 0, status.TotalEntries)
		assert.True(t, status.LastEntryTime.IsZero())

		require.NoError(t, store.Set("a", []byte("x"), 1, 1000))
		require.NoError(t, store.Set("b", []byte("y"), 1, 3000))

		status, err = store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, int64(3000), status.LastEntryTime.Unix())
		assert.Equal(t, int64(1000), status.OldestEntryTime.Unix())
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		backend      schema.DatabaseBackend
		wantContains []string
	}{
		{schema.SQLiteBackend, []string{"INSERT OR REPLACE", `"extract_cache"`}},
		{schema.MySQLBackend, []string{"ON DUPLICATE KEY UPDATE", "`extract_cache`"}},
		{schema.PostgreSQLBackend, []string{"ON CONFLICT (cache_key) DO UPDATE SET", `"extract_cache"`, "$4"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			store := &CacheStoreImpl{backend: tt.backend, tableName: extractTable}
			got := store.getUpsertQuery()
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestGetCreateTableQuery(t *testing.T) {
	assert.Contains(t, getCreateTableQuery("t", schema.SQLiteBackend), "cache_value BLOB NOT NULL")
	assert.Contains(t, getCreateTableQuery("t", schema.MySQLBackend), "cache_key VARCHAR(255) PRIMARY KEY")
	assert.Contains(t, getCreateTableQuery("t", schema.PostgreSQLBackend), "cache_value BYTEA NOT NULL")
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("invalid-name", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore("", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore("test_table", "unsupported", "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "clear.db")
		store, err := NewCacheStore(extractTable, schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "absent.db"), ""))
	})

	t.Run("sqlite empty path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearCache("unsupported", "", ""))
	})
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	resetGlobals(t)
	require.NoError(t, InitStores(schema.SQLiteBackend, ":memory:", "", ""))

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			store := Manager.GetExtractStore()
			if !assert.NotNil(t, store) {
				return
			}
			assert.NoError(t, store.Set("concurrent_key", []byte("value"), 1, int64(1000+id)))
		}(i)
	}
	wg.Wait()
}

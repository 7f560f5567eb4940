package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path uses stdout", func(t *testing.T) {
		f, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, f)
	})

	t.Run("path creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		f, err := SelectOutputFile(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("missing directory fails", func(t *testing.T) {
		_, err := SelectOutputFile(filepath.Join(t.TempDir(), "missing", "out.csv"))
		assert.Error(t, err)
	})
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input       string
		expected    bool
		expectError bool
	}{
		{input: "yes", expected: true},
		{input: "TRUE", expected: true},
		{input: "1", expected: true},
		{input: "no", expected: false},
		{input: "False", expected: false},
		{input: "0", expected: false},
		{input: "", expectError: true},
		{input: "maybe", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTruncateCell(t *testing.T) {
	assert.Equal(t, "short", TruncateCell("short", 10))
	assert.Equal(t, "Heart...", TruncateCell("HeartRateVariabilitySDNN", 8))
	assert.Equal(t, "abcdef", TruncateCell("abcdef", 3), "too narrow to truncate")
	assert.Equal(t, "héll...", TruncateCell("héllo wörld", 7))
}

func TestDBFilePaths(t *testing.T) {
	cache := GetCacheDBFilePath()
	history := GetHistoryDBFilePath()
	assert.NotEqual(t, cache, history)
	assert.True(t, strings.HasSuffix(cache, ".healthtab_cache.db"))
	assert.True(t, strings.HasSuffix(history, ".healthtab_history.db"))
}

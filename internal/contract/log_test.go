package contract

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected logrus.Level
	}{
		{input: "trace", expected: logrus.TraceLevel},
		{input: "DEBUG", expected: logrus.DebugLevel},
		{input: "info", expected: logrus.InfoLevel},
		{input: "warn", expected: logrus.WarnLevel},
		{input: "warning", expected: logrus.WarnLevel},
		{input: "error", expected: logrus.ErrorLevel},
		{input: "", expected: logrus.InfoLevel},
		{input: "loud", expected: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetLevel(tt.input))
		})
	}
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn := NewLogger(LogConfig{Level: "warn", Output: &buf})
	defer func() { _ = closeFn() }()

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn := NewLogger(LogConfig{Level: "info", JSON: true, Output: &buf})
	defer func() { _ = closeFn() }()

	logger.WithField("rows", 3).Info("Exported")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Exported", entry["msg"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestNewLoggerFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "healthtab")
	logger, closeFn := NewLogger(LogConfig{Level: "info", File: path, Output: &buf})

	logger.Info("to both")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger()
	assert.NotPanics(t, func() { logger.Warn("nothing") })
}

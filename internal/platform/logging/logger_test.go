package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(format string) *Config {
	return &Config{
		Level:   "info",
		Format:  format,
		Service: "scopestore",
		Version: "1.0.0",
	}
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(testConfig("json"), &buf)
	logger.Info("request handled", slog.String("path", "/api/v1/context"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "request handled", entry["msg"])
	assert.Equal(t, "scopestore", entry["service_name"])
	assert.Equal(t, "1.0.0", entry["service_version"])
	assert.Equal(t, "/api/v1/context", entry["path"])
}

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	cfg := testConfig("text")
	cfg.Level = "debug"

	NewWithWriter(cfg, &buf).Debug("debug message")

	assert.Contains(t, buf.String(), "debug message")
	assert.Contains(t, buf.String(), "service_name=scopestore")
}

func TestNewWithWriter_PrettyFormat(t *testing.T) {
	var buf bytes.Buffer

	NewWithWriter(testConfig("pretty"), &buf).Info("pretty message")

	assert.Contains(t, buf.String(), "pretty message")
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer

	cfg := testConfig("json")
	cfg.Level = "warn"

	logger := NewWithWriter(cfg, &buf)
	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewWithWriter_ExtraRedactFields(t *testing.T) {
	var buf bytes.Buffer

	cfg := testConfig("json")
	cfg.Redact = []string{"ssn"}

	NewWithWriter(cfg, &buf).Info("user", slog.String("ssn", "123-45-6789"))

	assert.NotContains(t, buf.String(), "123-45-6789")
	assert.Contains(t, buf.String(), "ssn")
}

func TestNewWithWriter_WithFileConfig(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "scopestore.log")

	cfg := testConfig("text")
	cfg.File = FileConfig{
		Enabled:    true,
		Path:       logFile,
		MaxSizeMB:  1,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}

	var buf bytes.Buffer
	NewWithWriter(cfg, &buf).Info("written twice")

	assert.Contains(t, buf.String(), "written twice")
	require.FileExists(t, logFile)

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &entry), "file output is always JSON")
	assert.Equal(t, "written twice", entry["msg"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{input: "trace", expected: LevelTrace},
		{input: "debug", expected: slog.LevelDebug},
		{input: "DEBUG", expected: slog.LevelDebug},
		{input: "info", expected: slog.LevelInfo},
		{input: "warn", expected: slog.LevelWarn},
		{input: "warning", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "", expected: slog.LevelInfo},
		{input: "verbose", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestSlogToCharmLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    slog.Level
		expected log.Level
	}{
		{name: "trace", input: LevelTrace, expected: log.DebugLevel},
		{name: "debug", input: slog.LevelDebug, expected: log.DebugLevel},
		{name: "info", input: slog.LevelInfo, expected: log.InfoLevel},
		{name: "warn", input: slog.LevelWarn, expected: log.WarnLevel},
		{name: "error", input: slog.LevelError, expected: log.ErrorLevel},
		{name: "above error", input: slog.Level(12), expected: log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slogToCharmLevel(tt.input))
		})
	}
}

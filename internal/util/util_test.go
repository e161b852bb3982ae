package util

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		width     int
		leftAlign bool
		expected  string
	}{
		{"left align", "abc", 6, true, "abc   "},
		{"right align", "abc", 6, false, "   abc"},
		{"already wide enough", "abcdef", 3, true, "abcdef"},
		{"wide runes", "日本", 6, true, "日本  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PadString(tt.input, tt.width, tt.leftAlign))
		})
	}
}

func TestTruncateToWidth(t *testing.T) {
	assert.Equal(t, "short", TruncateToWidth("short", 10))
	assert.Equal(t, "unbounded", TruncateToWidth("unbounded", 0))

	cut := TruncateToWidth("a rather long line", 8)
	assert.True(t, strings.HasSuffix(cut, "…"))
	assert.LessOrEqual(t, GetDisplayWidth(cut), 8)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, LevelError, parseLogLevel("error"))
	assert.Equal(t, LevelInfo, parseLogLevel("bogus"))
}

func TestLoggerLevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{level: LevelInfo, fields: map[string]interface{}{}}
	logger.AddOutput(NewConsoleOutput(&buf, FormatText))

	logger.Debug("hidden")
	logger.With(Field{Key: "peer", Value: "abc123"}, Field{Key: "hop", Value: 2}).Info("dialing")
	logger.Warnf("%d lines ignored", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] dialing hop=2 peer=abc123")
	assert.Contains(t, out, "[WARN] 3 lines ignored")
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    LogFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLoggerErrors(t *testing.T) {
	_, err := NewLogger(LoggerConfig{Level: "info"})
	assert.Error(t, err)

	_, err = NewLogger(LoggerConfig{File: filepath.Join(t.TempDir(), "app.log"), Format: "xml"})
	assert.Error(t, err)

	// a directory cannot be opened as a log file
	_, err = NewLogger(LoggerConfig{File: t.TempDir()})
	assert.Error(t, err)
}

func TestNewLoggerJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(LoggerConfig{Level: "debug", File: path, Format: FormatJSON})
	require.NoError(t, err)

	logger.With(Field{Key: "line", Value: 4}).Debug("Skip line")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(data), &decoded))
	assert.Equal(t, "DEBUG", decoded["level"])
	assert.Equal(t, "Skip line", decoded["message"])
	assert.Equal(t, float64(4), decoded["fields"].(map[string]interface{})["line"])
}

func TestInitLoggerFallsBackToConsole(t *testing.T) {
	err := InitLogger(LoggerConfig{Level: "info", File: t.TempDir()})
	assert.Error(t, err)

	logger := current()
	require.Len(t, logger.outputs, 1)
	assert.IsType(t, &ConsoleOutput{}, logger.outputs[0])

	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, InitLogger(LoggerConfig{Level: "info", File: path}))
	WithFields(Field{Key: "peers", Value: 2}).Info("Report written")
	LogDebug("below level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] Report written peers=2")
	assert.NotContains(t, string(data), "below level")
}

func TestJSONOutput(t *testing.T) {
	entry := LogEntry{
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:     LevelWarn.String(),
		Message:   "unmatched line",
		Fields:    map[string]interface{}{"line": 7},
	}

	var buf bytes.Buffer
	require.NoError(t, NewConsoleOutput(&buf, FormatJSON).Write(entry))

	var decoded map[string]interface{}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "WARN", decoded["level"])
	assert.Equal(t, "unmatched line", decoded["message"])
}

func TestFileOutputAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	for _, msg := range []string{"first", "second"} {
		output, err := NewFileOutput(path, FormatText)
		require.NoError(t, err)
		require.NoError(t, output.Write(LogEntry{Timestamp: time.Now(), Level: "INFO", Message: msg}))
		require.NoError(t, output.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], "[INFO] second"))
}

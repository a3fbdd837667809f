package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":   FormatJSON,
		" JSON ": FormatJSON,
		"text":   FormatText,
		"":       FormatText,
		"logfmt": FormatText,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseFormat(in), "ParseFormat(%q)", in)
	}
}

func TestNew_Formats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf}).
			Info("planned", "pair", "claude-opencode")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "planned", rec["msg"])
		assert.Equal(t, "INFO", rec["level"])
		assert.Equal(t, "claude-opencode", rec["pair"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		New(Config{Level: slog.LevelInfo, Format: FormatText, Output: &buf}).
			Info("planned", "pair", "claude-opencode")

		assert.False(t, json.Valid(buf.Bytes()))
		assert.Contains(t, buf.String(), "INFO  planned pair=claude-opencode")
	})

	t.Run("unknown format is text", func(t *testing.T) {
		var buf bytes.Buffer
		New(Config{Level: slog.LevelInfo, Format: "xml", Output: &buf}).Info("planned")
		assert.Contains(t, buf.String(), "INFO  planned")
	})
}

func TestNew_RedactsJSON(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf}).
		Info("env", "GITHUB_TOKEN", "ghp_abcdef123456", "other", "sk-live-9876", "port", 8080)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "****3456", rec["GITHUB_TOKEN"])
	assert.Equal(t, "****9876", rec["other"])
	assert.EqualValues(t, 8080, rec["port"])
}

func TestNew_FileSink(t *testing.T) {
	var console, file bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: FormatText,
		Output: &console,
		File:   &file,
	})

	logger.Info("applied", "name", "db")
	logger.Debug("hidden")

	assert.Contains(t, console.String(), "applied name=db")
	assert.NotContains(t, console.String(), "hidden")

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "db", rec["name"])
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		min   slog.Level
		level slog.Level
		want  bool
	}{
		{slog.LevelInfo, slog.LevelInfo, true},
		{slog.LevelInfo, slog.LevelDebug, false},
		{slog.LevelWarn, slog.LevelInfo, false},
		{slog.LevelWarn, slog.LevelError, true},
		{LevelTrace, LevelTrace, true},
		{slog.LevelDebug, LevelTrace, false},
	}
	for _, tt := range tests {
		t.Run(tt.min.String()+"/"+tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Level: tt.min, Output: &buf}).Log(t.Context(), tt.level, "m")
			assert.Equal(t, tt.want, buf.Len() > 0)
		})
	}
}

func TestRedactAttr(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want slog.Value
	}{
		{"secret key", slog.String("password", "hunter22"), slog.StringValue("****er22")},
		{"token prefix", slog.String("arg", "xoxb-12345678"), slog.StringValue("****5678")},
		{"plain", slog.String("name", "github"), slog.StringValue("github")},
		{"number under secret key", slog.Int("auth_retries", 3), slog.StringValue("********")},
		{"plain number", slog.Int("count", 3), slog.IntValue(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedactAttr(nil, tt.attr)
			assert.Equal(t, tt.attr.Key, got.Key)
			assert.True(t, tt.want.Equal(got.Value), "got %v", got.Value)
		})
	}

	group := slog.Group("auth", slog.String("user", "me"))
	assert.True(t, group.Equal(RedactAttr(nil, group)))
}

func TestNewDiscard(t *testing.T) {
	logger := NewDiscard()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
	logger.Error("dropped", "k", "v")
}

func TestForTest(t *testing.T) {
	logger := ForTest(t)
	assert.True(t, logger.Enabled(t.Context(), LevelTrace))
	logger.Log(t.Context(), LevelTrace, "trace from test logger", "test", t.Name())
}

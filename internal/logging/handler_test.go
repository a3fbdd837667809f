package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestHandler(level slog.Level) (*bytes.Buffer, *slog.Logger) {
	var buf bytes.Buffer
	return &buf, slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: level}))
}

func TestHandler_Line(t *testing.T) {
	buf, logger := newTestHandler(slog.LevelDebug)

	logger.Info("applied server", "name", "github", "count", 2)

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Equal(t, 1, strings.Count(line, "\n"))
	assert.Contains(t, line, "INFO  applied server name=github count=2")
}

func TestHandler_Levels(t *testing.T) {
	buf, logger := newTestHandler(LevelTrace)

	logger.Log(t.Context(), LevelTrace, "raw record")
	logger.Debug("decoded")
	logger.Warn("drift")

	out := buf.String()
	assert.Contains(t, out, "TRACE raw record")
	assert.Contains(t, out, "DEBUG decoded")
	assert.Contains(t, out, "WARN  drift")
}

func TestHandler_Enabled(t *testing.T) {
	h := NewHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	ctx := t.Context()

	assert.False(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelWarn))
	assert.True(t, h.Enabled(ctx, slog.LevelError))

	assert.True(t, NewHandler(&bytes.Buffer{}, nil).Enabled(ctx, slog.LevelInfo))
	assert.False(t, NewHandler(&bytes.Buffer{}, nil).Enabled(ctx, slog.LevelDebug))
}

func TestHandler_ZeroTimeOmitted(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, nil)

	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "no time", 0)
	assert.NoError(t, h.Handle(t.Context(), r))
	assert.Equal(t, "INFO  no time\n", buf.String())
}

func TestHandler_Groups(t *testing.T) {
	buf, logger := newTestHandler(slog.LevelInfo)

	logger.With("run", "r1").
		WithGroup("store").
		With("id", "claude").
		Info("wrote", "path", "/tmp/x.json", slog.Group("entry", "name", "db"))

	out := buf.String()
	assert.Contains(t, out, " run=r1")
	assert.Contains(t, out, " store.id=claude")
	assert.Contains(t, out, " store.path=/tmp/x.json")
	assert.Contains(t, out, " store.entry.name=db")
}

func TestHandler_QuotesAwkwardStrings(t *testing.T) {
	buf, logger := newTestHandler(slog.LevelInfo)

	logger.Info("msg", "reason", "both sides changed", "empty", "")

	out := buf.String()
	assert.Contains(t, out, `reason="both sides changed"`)
	assert.Contains(t, out, `empty=""`)
}

func TestHandler_Redaction(t *testing.T) {
	buf, logger := newTestHandler(slog.LevelInfo)

	logger.Info("env", "API_KEY", "secret12345", "value", "ghp_secrettoken", "port", "5432")

	out := buf.String()
	assert.NotContains(t, out, "secret12345")
	assert.NotContains(t, out, "ghp_secrettoken")
	assert.Contains(t, out, "API_KEY=****2345")
	assert.Contains(t, out, "value=****oken")
	assert.Contains(t, out, "port=5432")
}

func TestHandler_ReplaceAttrSeesGroups(t *testing.T) {
	var buf bytes.Buffer
	var seen [][]string
	h := NewHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			seen = append(seen, groups)
			if a.Key == "drop" {
				return slog.Attr{}
			}
			return a
		},
	})

	slog.New(h).WithGroup("a").WithGroup("b").Info("msg", "drop", "x", "keep", "y")

	assert.Equal(t, [][]string{{"a", "b"}, {"a", "b"}}, seen)
	assert.NotContains(t, buf.String(), "drop=")
	assert.Contains(t, buf.String(), "a.b.keep=y")
}

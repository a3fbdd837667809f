package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
)

type failingHandler struct {
	slog.Handler
	err error
}

func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }

func TestMultiHandler_FansOut(t *testing.T) {
	var info, debug bytes.Buffer
	h := NewMultiHandler(
		NewHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		NewHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h).With("run", "r1").WithGroup("g")

	logger.Debug("detail", "k", "v")
	logger.Info("summary")

	assert.NotContains(t, info.String(), "detail")
	assert.Contains(t, info.String(), "summary run=r1")
	assert.Contains(t, debug.String(), "detail run=r1 g.k=v")
	assert.Contains(t, debug.String(), "summary")
}

func TestMultiHandler_Enabled(t *testing.T) {
	h := NewMultiHandler(
		NewHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}),
		NewHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	assert.True(t, h.Enabled(t.Context(), slog.LevelDebug))
	assert.False(t, h.Enabled(t.Context(), LevelTrace))
	assert.False(t, NewMultiHandler().Enabled(t.Context(), slog.LevelError))
}

func TestMultiHandler_JoinsErrors(t *testing.T) {
	errA := errors.New("disk full")
	errB := errors.New("closed pipe")
	var buf bytes.Buffer
	base := NewHandler(&buf, nil)

	h := NewMultiHandler(
		failingHandler{Handler: base, err: errA},
		base,
		failingHandler{Handler: base, err: errB},
	)
	err := h.Handle(t.Context(), slog.NewRecord(time.Time{}, slog.LevelInfo, "still written", 0))

	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Contains(t, buf.String(), "still written")
}

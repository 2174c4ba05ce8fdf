package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records for testing.
type testHandler struct {
	buf   *bytes.Buffer
	level slog.Level
	attrs []slog.Attr
}

func newTestHandler() *testHandler {
	return &testHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := &testHandler{
		buf:   h.buf,
		level: h.level,
		attrs: make([]slog.Attr, len(h.attrs)+len(attrs)),
	}
	copy(newH.attrs, h.attrs)
	copy(newH.attrs[len(h.attrs):], attrs)
	return newH
}

func (h *testHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *testHandler) getLastRecord() map[string]any {
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if len(lines[i]) > 0 {
			var m map[string]any
			if err := json.Unmarshal(lines[i], &m); err == nil {
				return m
			}
		}
	}
	return nil
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds pool", func(t *testing.T) {
		h := newTestHandler()
		enriched := EnrichLogger(slog.New(h), "ui")
		enriched.Info("test message")

		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "ui", record["pool"])
		assert.Equal(t, "test message", record["msg"])
	})

	t.Run("nil logger returns nil", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "ui"))
	})
}

func TestWithMinLevel(t *testing.T) {
	t.Run("drops records below level", func(t *testing.T) {
		h := newTestHandler()
		logger := EnrichLogger(WithMinLevel(slog.New(h), slog.LevelWarn), "ui")

		logger.Info("quiet")
		assert.Nil(t, h.getLastRecord())

		logger.Warn("loud")
		record := h.getLastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "loud", record["msg"])
		assert.Equal(t, "ui", record["pool"])
	})

	t.Run("nil logger uses default", func(t *testing.T) {
		logger := WithMinLevel(nil, slog.LevelError)
		require.NotNil(t, logger)
		assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
	})
}

func TestLogDispatchStart(t *testing.T) {
	h := newTestHandler()
	LogDispatchStart(slog.New(h), "ui", "key.down", "evt-1", 2)

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "dispatch starting", record["msg"])
	assert.Equal(t, "ui", record["pool"])
	assert.Equal(t, "key.down", record["event_type"])
	assert.Equal(t, "evt-1", record["event_id"])
	assert.Equal(t, float64(2), record["depth"])

	// nil logger must not panic
	LogDispatchStart(nil, "ui", "key.down", "evt-1", 1)
}

func TestLogDispatchComplete(t *testing.T) {
	tests := []struct {
		name    string
		stopped bool
		want    string
	}{
		{"propagate", false, "propagate"},
		{"stop", true, "stop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler()
			LogDispatchComplete(slog.New(h), "ui", "key.down", tt.stopped, 3, 1.5)

			record := h.getLastRecord()
			require.NotNil(t, record)
			assert.Equal(t, "dispatch completed", record["msg"])
			assert.Equal(t, tt.want, record["result"])
			assert.Equal(t, float64(3), record["listeners"])
			assert.Equal(t, 1.5, record["duration_ms"])
		})
	}

	LogDispatchComplete(nil, "ui", "key.down", true, 0, 0)
}

func TestLogMutation(t *testing.T) {
	h := newTestHandler()
	LogMutation(slog.New(h), "ui", "add", true)

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "listener add", record["msg"])
	assert.Equal(t, "add", record["operation"])
	assert.Equal(t, true, record["deferred"])

	LogMutation(nil, "ui", "remove", false)
}

func TestLogDrain(t *testing.T) {
	h := newTestHandler()
	LogDrain(slog.New(h), "ui", 2, 1)

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "pending listeners applied", record["msg"])
	assert.Equal(t, float64(2), record["added"])
	assert.Equal(t, float64(1), record["removed"])

	LogDrain(nil, "ui", 0, 0)
}

func TestLogListenerPanic(t *testing.T) {
	h := newTestHandler()
	LogListenerPanic(slog.New(h), "ui", "key.down", "boom")

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "boom", record["panic"])

	LogListenerPanic(nil, "ui", "key.down", "boom")
}

func TestLogJournalError(t *testing.T) {
	h := newTestHandler()
	LogJournalError(slog.New(h), "ui", "evt-9", errors.New("disk full"))

	record := h.getLastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "evt-9", record["event_id"])
	assert.Equal(t, "disk full", record["error"])

	LogJournalError(nil, "ui", "evt-9", errors.New("disk full"))
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(10 * time.Millisecond)
	elapsed := done()

	assert.GreaterOrEqual(t, elapsed, float64(10))
	assert.Less(t, elapsed, float64(1000))
}

// Package observability provides logging, metrics, and tracing hooks for
// evpool listener pools.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// EnrichLogger adds pool context to a logger.
// Returns a new logger with the pool field set.
//
// Example:
//
//	enriched := EnrichLogger(logger, "ui")
//	enriched.Info("pool ready") // includes pool=ui
func EnrichLogger(logger *slog.Logger, pool string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("pool", pool))
}

// WithMinLevel returns a logger that drops records below level and passes
// the rest to logger's handler. A nil logger means slog.Default().
func WithMinLevel(logger *slog.Logger, level slog.Leveler) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return slog.New(&levelHandler{level: level, next: logger.Handler()})
}

type levelHandler struct {
	level slog.Leveler
	next  slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() && h.next.Enabled(ctx, level)
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, next: h.next.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, next: h.next.WithGroup(name)}
}

// LogDispatchStart logs the start of a dispatch.
func LogDispatchStart(logger *slog.Logger, pool, eventType, eventID string, depth int) {
	if logger == nil {
		return
	}
	logger.Debug("dispatch starting",
		slog.String("pool", pool),
		slog.String("event_type", eventType),
		slog.String("event_id", eventID),
		slog.Int("depth", depth),
	)
}

// LogDispatchComplete logs the end of a dispatch.
func LogDispatchComplete(logger *slog.Logger, pool, eventType string, stopped bool, invoked int, durationMs float64) {
	if logger == nil {
		return
	}
	result := "propagate"
	if stopped {
		result = "stop"
	}
	logger.Debug("dispatch completed",
		slog.String("pool", pool),
		slog.String("event_type", eventType),
		slog.String("result", result),
		slog.Int("listeners", invoked),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogMutation logs a listener add or remove.
// deferred reports whether the change was buffered behind a running dispatch.
func LogMutation(logger *slog.Logger, pool, op string, deferred bool) {
	if logger == nil {
		return
	}
	logger.Debug("listener "+op,
		slog.String("pool", pool),
		slog.String("operation", op),
		slog.Bool("deferred", deferred),
	)
}

// LogDrain logs pending mutations applied when the outermost dispatch ends.
func LogDrain(logger *slog.Logger, pool string, added, removed int) {
	if logger == nil {
		return
	}
	logger.Debug("pending listeners applied",
		slog.String("pool", pool),
		slog.Int("added", added),
		slog.Int("removed", removed),
	)
}

// LogListenerPanic logs a recovered listener panic.
func LogListenerPanic(logger *slog.Logger, pool, eventType string, value any) {
	if logger == nil {
		return
	}
	logger.Error("listener panicked",
		slog.String("pool", pool),
		slog.String("event_type", eventType),
		slog.String("panic", fmt.Sprint(value)),
	)
}

// LogJournalError logs a failed journal write (non-fatal).
func LogJournalError(logger *slog.Logger, pool, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal write failed",
		slog.String("pool", pool),
		slog.String("event_id", eventID),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}

package observability

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records pool metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records a finished dispatch with its duration, whether a
	// listener stopped propagation, and how many listeners were invoked.
	RecordDispatch(ctx context.Context, pool string, stopped bool, invoked int, durationMs float64)

	// RecordMutation records a listener add or remove.
	RecordMutation(ctx context.Context, pool, op string, deferred bool)

	// RecordDrain records pending mutations applied after a dispatch.
	RecordDrain(ctx context.Context, pool string, added, removed int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatches      metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	dispatchFanout  metric.Int64Histogram
	mutations       metric.Int64Counter
	drainSize       metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance from the global provider.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("evpool")

	dispatches, err := meter.Int64Counter("evpool.dispatch.count",
		metric.WithDescription("Number of dispatches"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("evpool.dispatch.latency_ms",
		metric.WithDescription("Dispatch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	dispatchFanout, err := meter.Int64Histogram("evpool.dispatch.listeners",
		metric.WithDescription("Listeners invoked per dispatch"),
	)
	if err != nil {
		return nil, err
	}

	mutations, err := meter.Int64Counter("evpool.mutation.count",
		metric.WithDescription("Number of listener adds and removes"),
	)
	if err != nil {
		return nil, err
	}

	drainSize, err := meter.Int64Histogram("evpool.drain.size",
		metric.WithDescription("Pending mutations applied when a dispatch unwinds"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		dispatches:      dispatches,
		dispatchLatency: dispatchLatency,
		dispatchFanout:  dispatchFanout,
		mutations:       mutations,
		drainSize:       drainSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordDispatch records a dispatch.
func (m *otelMetrics) RecordDispatch(ctx context.Context, pool string, stopped bool, invoked int, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String("pool", pool),
		attribute.Bool("stopped", stopped),
	)
	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchLatency.Record(ctx, durationMs, attrs)
	m.dispatchFanout.Record(ctx, int64(invoked), attrs)
}

// RecordMutation records a listener add or remove.
func (m *otelMetrics) RecordMutation(ctx context.Context, pool, op string, deferred bool) {
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pool", pool),
		attribute.String("operation", op),
		attribute.Bool("deferred", deferred),
	))
}

// RecordDrain records an applied drain.
func (m *otelMetrics) RecordDrain(ctx context.Context, pool string, added, removed int) {
	m.drainSize.Record(ctx, int64(added+removed), metric.WithAttributes(
		attribute.String("pool", pool),
	))
}

package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("evpool")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartDispatchSpan starts a span for one dispatch. Nested dispatches
	// become child spans of the dispatch that triggered them.
	StartDispatchSpan(ctx context.Context, pool, eventType string, depth int) (context.Context, trace.Span)

	// EndDispatchSpan records the dispatch outcome and ends the span.
	EndDispatchSpan(span trace.Span, stopped bool, invoked int)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartDispatchSpan starts a span for a dispatch using the global tracer.
func (m *otelSpanManager) StartDispatchSpan(ctx context.Context, pool, eventType string, depth int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "evpool.dispatch",
		trace.WithAttributes(
			attribute.String("pool.name", pool),
			attribute.String("event.type", eventType),
			attribute.Int("dispatch.depth", depth),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndDispatchSpan completes a dispatch span.
// A stopped dispatch is not an error; the outcome is an attribute.
func (m *otelSpanManager) EndDispatchSpan(span trace.Span, stopped bool, invoked int) {
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("dispatch.stopped", stopped),
		attribute.Int("dispatch.listeners", invoked),
	)
	span.SetStatus(codes.Ok, "")
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

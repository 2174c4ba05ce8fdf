package evpool

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// callLog records listener invocations in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
}

// take returns the recorded calls and resets the log.
func (c *callLog) take() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.calls
	c.calls = nil
	return out
}

// recordingListener returns a listener that logs its name and returns r.
func recordingListener(log *callLog, name string, r Result) *Listener {
	return NewListener(HandlerFunc(func(context.Context, Event) Result {
		log.add(name)
		return r
	}))
}

// listenerFunc returns a listener that logs its name and then runs fn.
func listenerFunc(log *callLog, name string, fn func(ctx context.Context, evt Event) Result) *Listener {
	return NewListener(HandlerFunc(func(ctx context.Context, evt Event) Result {
		log.add(name)
		return fn(ctx, evt)
	}))
}

func tick() Event {
	return New("tick", struct{}{})
}

// fakeMetrics counts recorder calls.
type fakeMetrics struct {
	mu         sync.Mutex
	dispatches int
	stopped    int
	invoked    int
	mutations  map[string]int
	drained    int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{mutations: make(map[string]int)}
}

func (f *fakeMetrics) RecordDispatch(_ context.Context, _ string, stopped bool, invoked int, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatches++
	f.invoked += invoked
	if stopped {
		f.stopped++
	}
}

func (f *fakeMetrics) RecordMutation(_ context.Context, _, op string, deferred bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := op
	if deferred {
		key += ":deferred"
	}
	f.mutations[key]++
}

func (f *fakeMetrics) RecordDrain(_ context.Context, _ string, added, removed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drained += added + removed
}

// fakeSpans records span lifecycle calls.
type fakeSpans struct {
	mu     sync.Mutex
	starts []int // depth per started span
	ends   int
	events []string
}

func (f *fakeSpans) StartDispatchSpan(ctx context.Context, _, _ string, depth int) (context.Context, trace.Span) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, depth)
	return ctx, noop.Span{}
}

func (f *fakeSpans) EndDispatchSpan(trace.Span, bool, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ends++
}

func (f *fakeSpans) AddSpanEvent(_ context.Context, name string, _ ...attribute.KeyValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, name)
}

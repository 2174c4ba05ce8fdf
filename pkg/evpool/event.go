package evpool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is anything that can be posted to a pool.
type Event interface {
	// ID is a unique identifier for this event instance.
	ID() string
	// Type names the kind of event (e.g., "window.resized").
	Type() string
	// Sender identifies who posted the event; empty when unknown.
	Sender() string
	// SetSender records who posted the event.
	SetSender(sender string)
	// Pool is the pool the event is dispatched on.
	Pool() Pool
}

// Metadata contains common event metadata fields.
type Metadata struct {
	EventID   string    `json:"id"`
	EventType string    `json:"type"`
	Sender    string    `json:"sender,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// BaseEvent is the generic Event implementation.
// T is the payload type.
type BaseEvent[T any] struct {
	Meta    Metadata `json:"metadata"`
	Payload T        `json:"payload"`

	selector func() Pool
}

// ID returns the unique event identifier.
func (e *BaseEvent[T]) ID() string {
	return e.Meta.EventID
}

// Type returns the event type.
func (e *BaseEvent[T]) Type() string {
	return e.Meta.EventType
}

// Sender returns who posted the event.
func (e *BaseEvent[T]) Sender() string {
	return e.Meta.Sender
}

// SetSender records who posted the event.
func (e *BaseEvent[T]) SetSender(sender string) {
	e.Meta.Sender = sender
}

// Timestamp returns when the event was created.
func (e *BaseEvent[T]) Timestamp() time.Time {
	return e.Meta.Timestamp
}

// Pool returns the pool picked by the event's options, or Default.
func (e *BaseEvent[T]) Pool() Pool {
	if e.selector != nil {
		return e.selector()
	}
	return Default()
}

// Data returns the payload as any.
func (e *BaseEvent[T]) Data() any {
	return e.Payload
}

// TypedData returns the strongly-typed payload.
func (e *BaseEvent[T]) TypedData() T {
	return e.Payload
}

// MarshalJSON implements json.Marshaler.
func (e *BaseEvent[T]) MarshalJSON() ([]byte, error) {
	type alias BaseEvent[T]
	return json.Marshal((*alias)(e))
}

// EventOption configures event creation.
type EventOption func(*eventConfig)

type eventConfig struct {
	id        string
	sender    string
	timestamp time.Time
	selector  func() Pool
}

// WithEventID sets a specific event ID (default: auto-generated UUID).
func WithEventID(id string) EventOption {
	return func(cfg *eventConfig) {
		cfg.id = id
	}
}

// WithTimestamp sets a specific timestamp (default: time.Now()).
func WithTimestamp(t time.Time) EventOption {
	return func(cfg *eventConfig) {
		cfg.timestamp = t
	}
}

// WithSender sets the sender up front. PostFrom overrides it.
func WithSender(sender string) EventOption {
	return func(cfg *eventConfig) {
		cfg.sender = sender
	}
}

// WithEventPool dispatches the event on p instead of Default.
func WithEventPool(p Pool) EventOption {
	return func(cfg *eventConfig) {
		cfg.selector = func() Pool { return p }
	}
}

// WithEventPoolName dispatches the event on the named pool. See Named.
func WithEventPoolName(name string) EventOption {
	return func(cfg *eventConfig) {
		cfg.selector = func() Pool { return Named(name) }
	}
}

// New creates an event with the given type and payload.
func New[T any](eventType string, payload T, opts ...EventOption) *BaseEvent[T] {
	cfg := &eventConfig{
		id:        uuid.New().String(),
		timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &BaseEvent[T]{
		Meta: Metadata{
			EventID:   cfg.id,
			EventType: eventType,
			Sender:    cfg.sender,
			Timestamp: cfg.timestamp,
		},
		Payload:  payload,
		selector: cfg.selector,
	}
}

// Post dispatches evt on its pool and returns the dispatch result.
// A nil event, or one with no pool, propagates without being delivered.
func Post(ctx context.Context, evt Event) Result {
	if evt == nil {
		return Propagate
	}
	p := evt.Pool()
	if isNilPool(p) {
		return Propagate
	}
	return p.Dispatch(ctx, evt)
}

// PostFrom tags evt with sender, then posts it. An empty sender leaves any
// existing tag in place.
func PostFrom(ctx context.Context, evt Event, sender string) Result {
	if evt != nil && sender != "" {
		evt.SetSender(sender)
	}
	return Post(ctx, evt)
}

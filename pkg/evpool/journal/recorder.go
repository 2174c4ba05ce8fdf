package journal

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/evpool/pkg/evpool"
	"github.com/randalmurphal/evpool/pkg/evpool/observability"
)

// Recorder is an evpool.Handler that appends every event it receives to a
// Store. It always returns evpool.Propagate.
type Recorder struct {
	store    Store
	pool     string
	logger   *slog.Logger
	payloads bool
	now      func() time.Time
}

// Compile-time interface check.
var _ evpool.Handler = (*Recorder)(nil)

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger used to report store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithPoolName sets the pool name written to each record. By default the
// name is taken from the event's pool.
func WithPoolName(name string) Option {
	return func(r *Recorder) {
		r.pool = name
	}
}

// WithPayloads stores the JSON encoding of each event alongside its
// metadata. Events that fail to encode are recorded without a payload.
func WithPayloads() Option {
	return func(r *Recorder) {
		r.payloads = true
	}
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach creates a Recorder and registers it in p. Close the returned
// listener to stop recording. It returns ErrNotAttached if p is nil or
// refuses the listener.
func Attach(p evpool.Pool, store Store, opts ...Option) (*evpool.Listener, error) {
	r := NewRecorder(store, opts...)
	if r.pool == "" {
		r.pool = poolName(p)
	}
	l := evpool.NewListener(r, evpool.WithPool(p))
	if !l.Enable() {
		return nil, ErrNotAttached
	}
	return l, nil
}

// Handle implements evpool.Handler.
func (r *Recorder) Handle(_ context.Context, evt evpool.Event) evpool.Result {
	if evt == nil {
		return evpool.Propagate
	}

	pool := r.pool
	if pool == "" {
		pool = poolName(evt.Pool())
	}

	rec := Record{
		ID:        uuid.NewString(),
		Pool:      pool,
		EventID:   evt.ID(),
		EventType: evt.Type(),
		Sender:    evt.Sender(),
		Timestamp: r.now().UTC(),
	}
	if r.payloads {
		data, err := json.Marshal(evt)
		if err != nil {
			observability.LogJournalError(r.logger, rec.Pool, rec.EventID, err)
		} else {
			rec.Payload = data
		}
	}

	if _, err := r.store.Append(rec); err != nil {
		observability.LogJournalError(r.logger, rec.Pool, rec.EventID, err)
	}
	return evpool.Propagate
}

func poolName(p evpool.Pool) string {
	if p == nil {
		return ""
	}
	if named, ok := p.(interface{ Name() string }); ok {
		return named.Name()
	}
	return ""
}

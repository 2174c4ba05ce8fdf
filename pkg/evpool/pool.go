package evpool

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/evpool/pkg/evpool/observability"
)

// Pool is a registry of listeners that events are dispatched to.
//
// Implementations must tolerate Add and Remove being called from inside a
// handler that Dispatch is currently running.
type Pool interface {
	// Add registers a listener. It reports whether the listener was accepted.
	Add(l *Listener) bool

	// Remove unregisters a listener. Removing an unknown listener is a no-op.
	Remove(l *Listener)

	// Dispatch delivers evt to the registered listeners and returns Stop if
	// any of them stopped the event.
	Dispatch(ctx context.Context, evt Event) Result
}

// isNilPool reports whether p is nil or an interface holding a nil pointer.
func isNilPool(p Pool) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// slot is one entry in the active list. A nil listener marks an entry that
// was removed while a dispatch was running.
type slot struct {
	listener *Listener
}

// poolState is everything the pool mutex guards.
//
// pendingAdd and pendingRemove are only non-empty while depth > 0. They are
// applied when depth returns to zero.
type poolState struct {
	listeners     []*slot // newest first
	pendingAdd    []*Listener
	pendingRemove map[*Listener][]*slot // slots cleared by the remove
	depth         int
	tombstones    int
}

func (s *poolState) active(l *Listener) bool {
	for _, sl := range s.listeners {
		if sl.listener == l {
			return true
		}
	}
	return false
}

func (s *poolState) insert(l *Listener, unique bool) {
	if unique && s.active(l) {
		return
	}
	s.listeners = append([]*slot{{listener: l}}, s.listeners...)
}

// addPending buffers an add. An add cancels a pending remove of the same
// listener: its cleared slots are restored in place, so a unique pool keeps
// l where it was and a non-unique pool also gains a new front entry.
func (s *poolState) addPending(l *Listener, unique bool) {
	if cleared, ok := s.pendingRemove[l]; ok {
		delete(s.pendingRemove, l)
		for _, sl := range cleared {
			sl.listener = l
		}
		s.tombstones -= len(cleared)
	}
	if unique && (s.active(l) || slices.Contains(s.pendingAdd, l)) {
		return
	}
	s.pendingAdd = append(s.pendingAdd, l)
}

func (s *poolState) delete(l *Listener) {
	s.listeners = slices.DeleteFunc(s.listeners, func(sl *slot) bool {
		return sl.listener == l
	})
}

// tombstone clears every slot holding l and drops l from pendingAdd.
// Dispatches already walking the list skip cleared slots.
func (s *poolState) tombstone(l *Listener) {
	found := false
	if n := len(s.pendingAdd); n > 0 {
		s.pendingAdd = slices.DeleteFunc(s.pendingAdd, func(x *Listener) bool { return x == l })
		found = len(s.pendingAdd) != n
	}
	var cleared []*slot
	for _, sl := range s.listeners {
		if sl.listener == l {
			sl.listener = nil
			cleared = append(cleared, sl)
		}
	}
	s.tombstones += len(cleared)
	if !found && len(cleared) == 0 {
		return
	}
	if s.pendingRemove == nil {
		s.pendingRemove = make(map[*Listener][]*slot)
	}
	s.pendingRemove[l] = append(s.pendingRemove[l], cleared...)
}

// drain applies buffered mutations. Pending adds go to the front in the
// order they were made, so the most recent add ends up first.
func (s *poolState) drain() (added, removed int, ok bool) {
	if len(s.pendingAdd) == 0 && s.tombstones == 0 {
		clear(s.pendingRemove)
		return 0, 0, false
	}

	next := make([]*slot, 0, len(s.pendingAdd)+len(s.listeners)-s.tombstones)
	for i := len(s.pendingAdd) - 1; i >= 0; i-- {
		next = append(next, &slot{listener: s.pendingAdd[i]})
	}
	for _, sl := range s.listeners {
		if sl.listener != nil {
			next = append(next, sl)
		}
	}

	added, removed = len(s.pendingAdd), s.tombstones
	s.listeners = next
	s.pendingAdd = nil
	s.tombstones = 0
	clear(s.pendingRemove)
	return added, removed, true
}

// DefaultPool is the standard Pool implementation.
//
// All methods are safe for concurrent use. The pool mutex is never held
// while a handler runs.
type DefaultPool struct {
	name string
	cfg  poolConfig

	mu    sync.Mutex
	state poolState
}

// Compile-time interface check.
var _ Pool = (*DefaultPool)(nil)

// NewPool creates an empty pool.
// The name labels the pool's logs, metrics, and spans.
func NewPool(name string, opts ...PoolOption) *DefaultPool {
	cfg := defaultPoolConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.resolveLogger()
	if logger := observability.EnrichLogger(cfg.logger, name); logger != nil {
		logger.Debug("pool created",
			"unique_listeners", cfg.unique,
			"recover_panics", cfg.recover,
		)
	}
	return &DefaultPool{name: name, cfg: cfg}
}

// Name returns the pool's name.
func (p *DefaultPool) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// Add registers l at the front of the pool.
//
// If a dispatch is running, the add is buffered and l first takes part in
// dispatches that start after the outermost running dispatch returns.
// Adding a nil listener is a no-op that returns false.
func (p *DefaultPool) Add(l *Listener) bool {
	if l == nil {
		return false
	}

	p.mu.Lock()
	deferred := p.state.depth > 0
	if deferred {
		p.state.addPending(l, p.cfg.unique)
	} else {
		p.state.insert(l, p.cfg.unique)
	}
	p.mu.Unlock()

	p.recordMutation("add", deferred)
	return true
}

// Remove unregisters every registration of l.
//
// If a dispatch is running, l is never invoked again once Remove returns,
// including by the running dispatch. Its slots are reclaimed when the
// outermost dispatch returns.
func (p *DefaultPool) Remove(l *Listener) {
	if l == nil {
		return
	}

	p.mu.Lock()
	deferred := p.state.depth > 0
	if deferred {
		p.state.tombstone(l)
	} else {
		p.state.delete(l)
	}
	p.mu.Unlock()

	p.recordMutation("remove", deferred)
}

func (p *DefaultPool) recordMutation(op string, deferred bool) {
	observability.LogMutation(p.cfg.logger, p.name, op, deferred)
	p.cfg.metrics.RecordMutation(context.Background(), p.name, op, deferred)
}

// Dispatch delivers evt to each listener, newest first, until one returns
// Stop. The list walked is the one in place when Dispatch started.
//
// ctx is handed to every handler unchanged apart from tracing; Dispatch
// itself never checks it for cancellation.
func (p *DefaultPool) Dispatch(ctx context.Context, evt Event) (result Result) {
	p.mu.Lock()
	p.state.depth++
	depth := p.state.depth
	snapshot := p.state.listeners
	p.mu.Unlock()

	eventType, eventID := describe(evt)
	observability.LogDispatchStart(p.cfg.logger, p.name, eventType, eventID, depth)
	ctx, span := p.cfg.spans.StartDispatchSpan(ctx, p.name, eventType, depth)
	elapsedMs := observability.TimedOperation()
	invoked := 0

	// Runs on panic too; the pool must be usable afterwards.
	defer func() {
		p.mu.Lock()
		p.state.depth--
		var added, removed int
		var drained bool
		if p.state.depth == 0 {
			added, removed, drained = p.state.drain()
		}
		p.mu.Unlock()

		if drained {
			observability.LogDrain(p.cfg.logger, p.name, added, removed)
			p.cfg.metrics.RecordDrain(ctx, p.name, added, removed)
		}

		durationMs := elapsedMs()
		stopped := result == Stop
		observability.LogDispatchComplete(p.cfg.logger, p.name, eventType, stopped, invoked, durationMs)
		p.cfg.metrics.RecordDispatch(ctx, p.name, stopped, invoked, durationMs)
		p.cfg.spans.EndDispatchSpan(span, stopped, invoked)
	}()

	result = Propagate
	for _, sl := range snapshot {
		p.mu.Lock()
		l := sl.listener
		p.mu.Unlock()
		if l == nil {
			continue
		}

		r, ok := p.invoke(ctx, l, evt, eventType)
		if !ok {
			continue
		}
		invoked++
		if r == Stop {
			result = Stop
			break
		}
	}
	return result
}

// invoke calls one listener. ok is false when the listener was closed
// before it could be entered.
func (p *DefaultPool) invoke(ctx context.Context, l *Listener, evt Event, eventType string) (result Result, ok bool) {
	if !p.cfg.recover {
		return l.deliver(ctx, evt)
	}

	defer func() {
		if r := recover(); r != nil {
			perr := &PanicError{
				Pool:      p.name,
				EventType: eventType,
				Value:     r,
				Stack:     string(debug.Stack()),
			}
			observability.LogListenerPanic(p.cfg.logger, p.name, eventType, r)
			p.cfg.spans.AddSpanEvent(ctx, "listener.panic",
				attribute.String("panic", fmt.Sprint(r)),
			)
			if p.cfg.onPanic != nil {
				p.cfg.onPanic(perr)
			}
			result, ok = Propagate, true
		}
	}()
	return l.deliver(ctx, evt)
}

// Len returns the number of live registrations, not counting listeners
// removed during a running dispatch or adds still pending.
func (p *DefaultPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.state.listeners) - p.state.tombstones
}

// Depth returns how many dispatches are currently running on the pool,
// nested or on other goroutines.
func (p *DefaultPool) Depth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.depth
}

// Pending returns the number of buffered adds and removes waiting for the
// running dispatches to finish.
func (p *DefaultPool) Pending() (adds, removes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.state.pendingAdd), len(p.state.pendingRemove)
}

func describe(evt Event) (eventType, eventID string) {
	if evt == nil {
		return "", ""
	}
	return evt.Type(), evt.ID()
}

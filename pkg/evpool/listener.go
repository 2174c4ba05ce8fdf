package evpool

import (
	"context"
	"sync"
)

// Listener attaches a Handler to a pool.
//
// A Listener is registered in at most one pool at a time. The pool it
// registers in is chosen when Enable is called, using the strategy set by
// its ListenerOptions. Pointer identity is the listener's identity: the
// same handler wrapped in two Listeners registers twice.
type Listener struct {
	handler  Handler
	selector func() Pool

	mu       sync.Mutex
	idle     *sync.Cond
	pool     Pool // set while registered
	inflight int
	closed   bool
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithPool registers the listener in p.
// A nil p, including a typed nil such as (*DefaultPool)(nil), leaves the
// listener with no pool; Enable then returns false.
func WithPool(p Pool) ListenerOption {
	return func(l *Listener) {
		l.selector = func() Pool { return p }
	}
}

// WithPoolName registers the listener in the named pool. See Named.
func WithPoolName(name string) ListenerOption {
	return func(l *Listener) {
		l.selector = func() Pool { return Named(name) }
	}
}

// WithPoolSelector sets a function that picks the pool each time the
// listener is enabled. Returning nil or a typed nil makes Enable fail.
func WithPoolSelector(fn func() Pool) ListenerOption {
	return func(l *Listener) {
		l.selector = fn
	}
}

// NewListener wraps h in a Listener. The listener is not registered until
// Enable is called. A nil handler always propagates.
func NewListener(h Handler, opts ...ListenerOption) *Listener {
	l := &Listener{handler: h}
	l.idle = sync.NewCond(&l.mu)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Listen creates a listener for h and enables it.
func Listen(h Handler, opts ...ListenerOption) *Listener {
	l := NewListener(h, opts...)
	l.Enable()
	return l
}

// Pool returns the pool the listener would register in: the one picked by
// its options, or Default when none was given.
func (l *Listener) Pool() Pool {
	if l.selector != nil {
		return l.selector()
	}
	return Default()
}

// Enable registers the listener in its pool. It returns false if the
// listener is already registered, has been closed, or has no pool.
func (l *Listener) Enable() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.pool != nil {
		return false
	}
	p := l.Pool()
	if isNilPool(p) || !p.Add(l) {
		return false
	}
	l.pool = p
	return true
}

// Disable unregisters the listener from the pool it was registered in.
// Calling Disable on a listener that is not registered is a no-op.
//
// Disable is safe to call from the listener's own handler.
func (l *Listener) Disable() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unregister()
}

// Close disables the listener permanently and waits for invocations running
// on other goroutines to return. After Close returns the handler is never
// entered again. Close always returns nil.
//
// Close must not be called from the listener's own handler, directly or
// through a nested dispatch, since it would wait on itself.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.unregister()
	l.closed = true
	for l.inflight > 0 {
		l.idle.Wait()
	}
	return nil
}

func (l *Listener) unregister() {
	if l.pool == nil {
		return
	}
	l.pool.Remove(l)
	l.pool = nil
}

// Enabled reports whether the listener is registered in a pool.
func (l *Listener) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pool != nil
}

// Registered returns the pool the listener is registered in, or nil.
func (l *Listener) Registered() Pool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pool
}

// Handle invokes the wrapped handler, so a Listener can itself be used as a
// Handler. A closed listener propagates without calling the handler.
func (l *Listener) Handle(ctx context.Context, evt Event) Result {
	r, _ := l.deliver(ctx, evt)
	return r
}

// deliver runs the handler unless the listener is closed, tracking the call
// so Close can wait for it.
func (l *Listener) deliver(ctx context.Context, evt Event) (Result, bool) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return Propagate, false
	}
	l.inflight++
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.inflight--
		if l.inflight == 0 {
			l.idle.Broadcast()
		}
		l.mu.Unlock()
	}()

	if l.handler == nil {
		return Propagate, true
	}
	return l.handler.Handle(ctx, evt), true
}

/*
Package evpool provides an in-process listener pool with reentrant dispatch.

# Overview

A pool holds an ordered list of listeners. Posting an event walks that list
synchronously on the caller's goroutine, newest listener first, until a
listener returns Stop or the list is exhausted.

Listeners may add or remove themselves, or any other listener, from inside
their handler. While a dispatch is running the pool buffers those changes and
applies them once the outermost dispatch returns, so traversal never observes
a half-mutated list. Removal during a dispatch takes effect immediately for
invocation purposes: a removed listener is never called again, even by the
dispatch that is currently walking past it.

# Basic Usage

	type Resized struct{ W, H int }

	l := evpool.Listen(evpool.HandlerFunc(func(ctx context.Context, evt evpool.Event) evpool.Result {
	    if e, ok := evt.(*evpool.BaseEvent[Resized]); ok {
	        fmt.Println("resized to", e.Payload.W, e.Payload.H)
	    }
	    return evpool.Propagate
	}))
	defer l.Close()

	evpool.Post(ctx, evpool.New("window.resized", Resized{W: 800, H: 600}))

# Typed Handlers

Typed wraps a function that only cares about one event type. Other events
pass through untouched:

	l := evpool.Listen(evpool.Typed(func(ctx context.Context, e *evpool.BaseEvent[Resized]) evpool.Result {
	    return evpool.Stop
	}))

# Pools

Listeners and events resolve their pool at the moment they need it. By
default that is the process-wide pool returned by Default. Use WithPool or
WithPoolName to target a specific pool:

	ui := evpool.Named("ui")
	l := evpool.Listen(h, evpool.WithPool(ui))
	evpool.Post(ctx, evpool.New("key.down", key, evpool.WithEventPool(ui)))

Configure sets options for the default pool; it must be called before the
first call to Default to have any effect:

	evpool.Configure(
	    evpool.WithLogger(slog.Default()),
	    evpool.WithMetrics(true),
	    evpool.WithRecover(nil),
	)

# Teardown

A listener is registered in at most one pool at a time. Close unregisters it
and waits for any invocation already running on another goroutine to return,
so once Close returns the handler is never entered again. Pair it with defer:

	l := evpool.Listen(h)
	defer l.Close()

Close must not be called from inside the listener's own handler. Use Disable
there; Disable unregisters without waiting.

# Panics

By default a panicking handler unwinds through Post unchanged. The pool's
bookkeeping is restored on the way out, so the pool stays usable. WithRecover
converts handler panics into a *PanicError passed to a callback, and the
dispatch continues with the next listener.
*/
package evpool

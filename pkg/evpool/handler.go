package evpool

import "context"

// Handler receives events from a pool.
//
// Handle is called synchronously on the goroutine that posted the event.
// It may add or remove listeners and may post further events; the pool
// handles the reentrancy.
type Handler interface {
	Handle(ctx context.Context, evt Event) Result
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt Event) Result

// Handle calls f(ctx, evt).
func (f HandlerFunc) Handle(ctx context.Context, evt Event) Result {
	return f(ctx, evt)
}

// Typed returns a Handler that only sees events of type E.
// Events of any other type are left alone and propagate.
//
// Example:
//
//	h := evpool.Typed(func(ctx context.Context, e *evpool.BaseEvent[KeyPress]) evpool.Result {
//	    if e.Payload.Key == "esc" {
//	        return evpool.Stop
//	    }
//	    return evpool.Propagate
//	})
func Typed[E Event](fn func(ctx context.Context, evt E) Result) Handler {
	return HandlerFunc(func(ctx context.Context, evt Event) Result {
		typed, ok := evt.(E)
		if !ok {
			return Propagate
		}
		return fn(ctx, typed)
	})
}

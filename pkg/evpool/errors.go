package evpool

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration.
var (
	// ErrInvalidPoolSection indicates an entry under "pools" is not a map.
	ErrInvalidPoolSection = errors.New("pool section must be a map")

	// ErrEmptyPoolName indicates a named pool section with an empty key.
	ErrEmptyPoolName = errors.New("pool name cannot be empty")

	// ErrInvalidLogLevel indicates a log_level that is neither a level name
	// nor an integer.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// PanicError captures a recovered listener panic.
// It is only produced when the pool was built with WithRecover.
type PanicError struct {
	// Pool is the name of the pool that was dispatching.
	Pool string
	// EventType is the type of the event being handled, if known.
	EventType string
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("listener in pool %s panicked handling %q: %v", e.Pool, e.EventType, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

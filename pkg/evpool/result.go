package evpool

// Result is a listener's verdict on an event.
type Result int

const (
	// Propagate lets the event continue to the next listener.
	Propagate Result = iota

	// Stop ends the dispatch. Listeners after this one are not invoked.
	Stop
)

// String returns "propagate" or "stop".
func (r Result) String() string {
	switch r {
	case Propagate:
		return "propagate"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

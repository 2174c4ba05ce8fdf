// Package journal records dispatched events for diagnostics.
//
// A Recorder is an ordinary evpool handler: attach it to a pool and every
// event it sees is appended to a Store. The journal is a trail of what was
// posted, in order, per pool. It never affects delivery: the Recorder always
// propagates and store failures are logged, not returned.
package journal

import (
	"errors"
	"time"
)

// Store persists dispatch records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores rec and returns it with Sequence assigned. Sequences
	// start at 1 and increase by one per pool.
	Append(rec Record) (Record, error)

	// Get returns the record with the given ID.
	// Returns ErrNotFound if it doesn't exist.
	Get(id string) (Record, error)

	// List returns all records for a pool, ordered by sequence.
	// Returns an empty slice (not error) if the pool has no records.
	List(pool string) ([]Record, error)

	// Count returns the number of records for a pool.
	Count(pool string) (int, error)

	// Truncate removes all records for a pool.
	// Returns nil if the pool has no records.
	Truncate(pool string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Record is one dispatched event as seen by a Recorder.
type Record struct {
	ID        string
	Pool      string
	Sequence  int64
	EventID   string
	EventType string
	Sender    string
	Timestamp time.Time
	// Payload is the JSON encoding of the event, when payload capture is on.
	Payload []byte
}

// Sentinel errors for journal operations.
var (
	// ErrNotFound indicates a record doesn't exist.
	ErrNotFound = errors.New("journal record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")

	// ErrNotAttached indicates a recorder could not be registered in a pool.
	ErrNotAttached = errors.New("journal recorder not attached")
)

package journal

import (
	"slices"
	"sync"
)

// MemoryStore keeps records in memory. Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	pools  map[string][]Record
	byID   map[string]Record
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pools: make(map[string][]Record),
		byID:  make(map[string]Record),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}

	records := m.pools[rec.Pool]
	rec.Sequence = 1
	if n := len(records); n > 0 {
		rec.Sequence = records[n-1].Sequence + 1
	}
	rec.Payload = slices.Clone(rec.Payload)

	m.pools[rec.Pool] = append(records, rec)
	m.byID[rec.ID] = rec
	return rec, nil
}

// Get implements Store.
func (m *MemoryStore) Get(id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}
	rec, ok := m.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// List implements Store.
func (m *MemoryStore) List(pool string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	return slices.Clone(m.pools[pool]), nil
}

// Count implements Store.
func (m *MemoryStore) Count(pool string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.pools[pool]), nil
}

// Truncate implements Store.
func (m *MemoryStore) Truncate(pool string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	for _, rec := range m.pools[pool] {
		delete(m.byID, rec.ID)
	}
	delete(m.pools, pool)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.pools = nil
	m.byID = nil
	return nil
}

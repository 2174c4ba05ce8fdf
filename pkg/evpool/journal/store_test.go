package journal_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/evpool/pkg/evpool/journal"
)

// storeFactory creates a store instance for testing.
type storeFactory func(t *testing.T) journal.Store

func record(id, pool, eventType string) journal.Record {
	return journal.Record{
		ID:        id,
		Pool:      pool,
		EventID:   "evt-" + id,
		EventType: eventType,
		Sender:    "sender-" + id,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC),
	}
}

// storeContractTest runs contract tests against any Store implementation.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	t.Run(name+"/Append_assigns_sequence", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		first, err := store.Append(record("r1", "ui", "key.down"))
		require.NoError(t, err)
		second, err := store.Append(record("r2", "ui", "key.up"))
		require.NoError(t, err)
		other, err := store.Append(record("r3", "net", "packet"))
		require.NoError(t, err)

		assert.Equal(t, int64(1), first.Sequence)
		assert.Equal(t, int64(2), second.Sequence)
		assert.Equal(t, int64(1), other.Sequence, "sequences are per pool")
	})

	t.Run(name+"/Get", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		in := record("r1", "ui", "key.down")
		in.Payload = []byte(`{"key":"a"}`)
		_, err := store.Append(in)
		require.NoError(t, err)

		got, err := store.Get("r1")
		require.NoError(t, err)
		assert.Equal(t, "ui", got.Pool)
		assert.Equal(t, int64(1), got.Sequence)
		assert.Equal(t, "evt-r1", got.EventID)
		assert.Equal(t, "key.down", got.EventType)
		assert.Equal(t, "sender-r1", got.Sender)
		assert.True(t, in.Timestamp.Equal(got.Timestamp))
		assert.Equal(t, in.Payload, got.Payload)
	})

	t.Run(name+"/Get_NotFound", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Get("missing")
		assert.ErrorIs(t, err, journal.ErrNotFound)
	})

	t.Run(name+"/List_ordered", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		for i := range 5 {
			_, err := store.Append(record(fmt.Sprintf("r%d", i), "ui", "tick"))
			require.NoError(t, err)
		}
		_, err := store.Append(record("x", "net", "tick"))
		require.NoError(t, err)

		records, err := store.List("ui")
		require.NoError(t, err)
		require.Len(t, records, 5)
		for i, rec := range records {
			assert.Equal(t, int64(i+1), rec.Sequence)
			assert.Equal(t, fmt.Sprintf("r%d", i), rec.ID)
		}
	})

	t.Run(name+"/List_Empty", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		records, err := store.List("nothing")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run(name+"/Count_and_Truncate", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		for i := range 3 {
			_, err := store.Append(record(fmt.Sprintf("u%d", i), "ui", "tick"))
			require.NoError(t, err)
		}
		_, err := store.Append(record("n0", "net", "tick"))
		require.NoError(t, err)

		n, err := store.Count("ui")
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		require.NoError(t, store.Truncate("ui"))
		require.NoError(t, store.Truncate("never-used"))

		n, err = store.Count("ui")
		require.NoError(t, err)
		assert.Zero(t, n)
		_, err = store.Get("u0")
		assert.ErrorIs(t, err, journal.ErrNotFound)

		n, err = store.Count("net")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		rec, err := store.Append(record("u9", "ui", "tick"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), rec.Sequence, "sequence restarts after truncate")
	})

	t.Run(name+"/Closed", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		_, err := store.Append(record("r1", "ui", "tick"))
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = store.Get("r1")
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = store.List("ui")
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		_, err = store.Count("ui")
		assert.ErrorIs(t, err, journal.ErrStoreClosed)
		assert.ErrorIs(t, store.Truncate("ui"), journal.ErrStoreClosed)
	})

	t.Run(name+"/Concurrent_Append", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		const workers, perWorker = 10, 20
		var g errgroup.Group
		for w := range workers {
			g.Go(func() error {
				for i := range perWorker {
					if _, err := store.Append(record(fmt.Sprintf("w%d-%d", w, i), "ui", "tick")); err != nil {
						return err
					}
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		records, err := store.List("ui")
		require.NoError(t, err)
		require.Len(t, records, workers*perWorker)
		for i, rec := range records {
			assert.Equal(t, int64(i+1), rec.Sequence)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeContractTest(t, "Memory", func(t *testing.T) journal.Store {
		return journal.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	storeContractTest(t, "SQLite", func(t *testing.T) journal.Store {
		store, err := journal.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return store
	})
}

func TestMemoryStore_CopiesPayload(t *testing.T) {
	store := journal.NewMemoryStore()
	defer store.Close()

	rec := record("r1", "ui", "tick")
	rec.Payload = []byte("original")
	_, err := store.Append(rec)
	require.NoError(t, err)

	rec.Payload[0] = 'X'
	got, err := store.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got.Payload)
}

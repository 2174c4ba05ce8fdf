package evpool

import (
	"sync"

	"github.com/randalmurphal/evpool/pkg/evpool/registry"
)

// DefaultPoolName is the name of the pool returned by Default.
const DefaultPoolName = "default"

var (
	defaultPool    *DefaultPool
	defaultOnce    sync.Once
	defaultOptions []PoolOption
	defaultOptMu   sync.Mutex

	namedPools = registry.New[string, *DefaultPool]()
)

// Configure sets the options used to build the default pool.
// It only has an effect if called before the first call to Default.
func Configure(opts ...PoolOption) {
	defaultOptMu.Lock()
	defaultOptions = opts
	defaultOptMu.Unlock()
}

// Default returns the process-wide pool, creating it on first use.
// Concurrent first callers all observe the same pool.
func Default() *DefaultPool {
	defaultOnce.Do(func() {
		defaultOptMu.Lock()
		opts := defaultOptions
		defaultOptMu.Unlock()
		defaultPool = NewPool(DefaultPoolName, opts...)
	})
	return defaultPool
}

// Named returns the pool registered under name, creating it with opts if it
// does not exist yet. opts are ignored for a pool that already exists.
// The empty name and DefaultPoolName both return Default.
//
// Named pools are isolated from each other and from the default pool.
func Named(name string, opts ...PoolOption) *DefaultPool {
	if name == "" || name == DefaultPoolName {
		return Default()
	}
	return namedPools.GetOrCreate(name, func() *DefaultPool {
		return NewPool(name, opts...)
	})
}

// Lookup returns the named pool if it has been created. Lookup("") and
// Lookup(DefaultPoolName) return Default.
func Lookup(name string) (*DefaultPool, bool) {
	if name == "" || name == DefaultPoolName {
		return Default(), true
	}
	return namedPools.Get(name)
}

// DropNamed removes a named pool from the directory and reports whether it
// was there. Holders of the pool can keep using it; the next Named call for
// the same name creates a fresh pool. The default pool cannot be dropped.
func DropNamed(name string) bool {
	_, ok := namedPools.Delete(name)
	return ok
}

// NamedPools returns the named pools created so far, ordered by name.
func NamedPools() []*DefaultPool {
	var pools []*DefaultPool
	namedPools.Range(func(_ string, p *DefaultPool) bool {
		pools = append(pools, p)
		return true
	})
	return pools
}

// PoolNames returns the names of all named pools created so far, sorted.
// The default pool is not included.
func PoolNames() []string {
	return namedPools.Keys()
}

// Package registry provides a concurrent map of lazily created values,
// used by evpool to hold its named pools.
//
// # Lazy Creation
//
// GetOrCreate builds a value the first time its key is requested and returns
// the same value on every later call:
//
//	pools := registry.New[string, *evpool.DefaultPool]()
//	ui := pools.GetOrCreate("ui", func() *evpool.DefaultPool {
//	    return evpool.NewPool("ui")
//	})
//
// The create function runs at most once per key, even under concurrent
// access.
//
// # Ordering
//
// Keys and Range visit entries in ascending key order, so listings are
// stable across calls.
package registry

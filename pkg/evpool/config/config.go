package config

import (
	"maps"
	"slices"
	"strconv"
)

// Config is a read-only view over decoded YAML or JSON.
// Accessors fall back to the supplied default when a key is missing or
// holds a value of the wrong shape.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// String returns the string value for key, or defaultVal.
func (c Config) String(key, defaultVal string) string {
	if s, ok := c.data[key].(string); ok {
		return s
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal.
//
// Accepts a bool, or a string understood by strconv.ParseBool ("true",
// "0", "F", ...).
func (c Config) Bool(key string, defaultVal bool) bool {
	switch v := c.data[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal.
// Floats are accepted only when they have no fractional part.
func (c Config) Int(key string, defaultVal int) int {
	switch v := c.data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	}
	return defaultVal
}

// Sub returns the nested section under key. The second result is false
// when key is missing or does not hold a map; the returned Config is then
// empty.
func (c Config) Sub(key string) (Config, bool) {
	switch v := c.data[key].(type) {
	case map[string]any:
		return New(v), true
	case map[any]any:
		// Produced by decoders that don't force string keys.
		m := make(map[string]any, len(v))
		for k, val := range v {
			ks, ok := k.(string)
			if !ok {
				return New(nil), false
			}
			m[ks] = val
		}
		return New(m), true
	}
	return New(nil), false
}

// Has returns true if the key exists in the config.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Keys returns the top-level keys in ascending order.
func (c Config) Keys() []string {
	return slices.Sorted(maps.Keys(c.data))
}

// Raw returns the underlying map.
// The returned map should not be modified.
func (c Config) Raw() map[string]any {
	return c.data
}

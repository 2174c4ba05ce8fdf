/*
Package config reads pool settings from YAML or JSON.

# Overview

Config wraps decoded data and exposes typed accessors that return a default
when a key is missing or has the wrong type, so callers never need type
assertions:

	cfg, err := config.FromFile("evpool.yaml")
	if err != nil {
	    return err
	}
	unique := cfg.Bool("unique_listeners", false)

Nested sections are reached with Sub:

	pools, ok := cfg.Sub("pools")
	if ok {
	    for _, name := range pools.Keys() {
	        section, _ := pools.Sub(name)
	        ...
	    }
	}

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config

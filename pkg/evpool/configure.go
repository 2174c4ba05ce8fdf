package evpool

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/randalmurphal/evpool/pkg/evpool/config"
)

// Config keys understood by OptionsFromConfig.
const (
	KeyUniqueListeners = "unique_listeners"
	KeyMetrics         = "metrics"
	KeyTracing         = "tracing"
	KeyRecoverPanics   = "recover_panics"
	KeyLogLevel        = "log_level"
	KeyPools           = "pools"
)

// OptionsFromConfig turns one pool section into pool options.
// Missing keys leave the corresponding default in place.
//
//	unique_listeners: true
//	metrics: true
//	tracing: false
//	recover_panics: true
//	log_level: debug
//
// An invalid log_level is skipped here; ConfigureFrom reports it.
func OptionsFromConfig(cfg config.Config) []PoolOption {
	var opts []PoolOption
	if cfg.Has(KeyUniqueListeners) && cfg.Bool(KeyUniqueListeners, false) {
		opts = append(opts, WithUniqueListeners())
	}
	if cfg.Has(KeyMetrics) {
		opts = append(opts, WithMetrics(cfg.Bool(KeyMetrics, false)))
	}
	if cfg.Has(KeyTracing) {
		opts = append(opts, WithTracing(cfg.Bool(KeyTracing, false)))
	}
	if cfg.Bool(KeyRecoverPanics, false) {
		opts = append(opts, WithRecover(nil))
	}
	if level, ok, err := logLevel(cfg); ok && err == nil {
		opts = append(opts, WithLogLevel(level))
	}
	return opts
}

// logLevel reads KeyLogLevel as a level name understood by slog ("debug",
// "WARN", "info+2") or as a numeric slog level.
func logLevel(cfg config.Config) (level slog.Level, ok bool, err error) {
	if !cfg.Has(KeyLogLevel) {
		return 0, false, nil
	}
	if name := cfg.String(KeyLogLevel, ""); name != "" {
		if err := level.UnmarshalText([]byte(name)); err != nil {
			return 0, false, fmt.Errorf("%s: %w: %w", KeyLogLevel, ErrInvalidLogLevel, err)
		}
		return level, true, nil
	}
	if n := cfg.Int(KeyLogLevel, math.MinInt); n != math.MinInt {
		return slog.Level(n), true, nil
	}
	return 0, false, fmt.Errorf("%s: %w", KeyLogLevel, ErrInvalidLogLevel)
}

// ConfigureFrom configures the default pool from the top-level keys of cfg
// and creates every pool listed under "pools". extra options are applied
// before the ones read from cfg, to every pool.
//
// Like Configure, it only affects the default pool if called before the
// first call to Default. Named pools that already exist keep their options.
func ConfigureFrom(cfg config.Config, extra ...PoolOption) error {
	if _, _, err := logLevel(cfg); err != nil {
		return err
	}
	defaultOpts := append(append([]PoolOption{}, extra...), OptionsFromConfig(cfg)...)

	type namedSection struct {
		name string
		opts []PoolOption
	}
	var named []namedSection

	if cfg.Has(KeyPools) {
		pools, ok := cfg.Sub(KeyPools)
		if !ok {
			return fmt.Errorf("%s: %w", KeyPools, ErrInvalidPoolSection)
		}
		for _, name := range pools.Keys() {
			if name == "" {
				return fmt.Errorf("%s: %w", KeyPools, ErrEmptyPoolName)
			}
			section, ok := pools.Sub(name)
			if !ok && pools.Raw()[name] != nil {
				return fmt.Errorf("%s.%s: %w", KeyPools, name, ErrInvalidPoolSection)
			}
			if _, _, err := logLevel(section); err != nil {
				return fmt.Errorf("%s.%s: %w", KeyPools, name, err)
			}
			if name == DefaultPoolName {
				defaultOpts = append(defaultOpts, OptionsFromConfig(section)...)
				continue
			}
			opts := append(append([]PoolOption{}, extra...), OptionsFromConfig(section)...)
			named = append(named, namedSection{name: name, opts: opts})
		}
	}

	Configure(defaultOpts...)
	for _, s := range named {
		Named(s.name, s.opts...)
	}
	return nil
}

// ConfigureFromFile loads a YAML or JSON file and applies it with
// ConfigureFrom.
//
// Example evpool.yaml:
//
//	recover_panics: true
//	pools:
//	  ui:
//	    unique_listeners: true
//	    tracing: true
//	  net: {}
func ConfigureFromFile(path string, extra ...PoolOption) error {
	cfg, err := config.FromFile(path)
	if err != nil {
		return fmt.Errorf("load pool config: %w", err)
	}
	return ConfigureFrom(cfg, extra...)
}

package evpool

import (
	"log/slog"

	"github.com/randalmurphal/evpool/pkg/evpool/observability"
)

// poolConfig holds the settings a pool is built with.
type poolConfig struct {
	logger   *slog.Logger
	logLevel *slog.Level
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	unique   bool
	recover  bool
	onPanic  func(*PanicError)
}

// defaultPoolConfig returns a config with logging, metrics, and tracing off.
func defaultPoolConfig() poolConfig {
	return poolConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// PoolOption configures a pool.
type PoolOption func(*poolConfig)

// WithLogger sets the logger for mutation and dispatch logs.
// Default: nil (no logging).
func WithLogger(logger *slog.Logger) PoolOption {
	return func(c *poolConfig) {
		c.logger = logger
	}
}

// WithLogLevel drops pool log records below level. It applies to the
// logger set with WithLogger regardless of option order; with no logger
// set, records go to slog.Default().
func WithLogLevel(level slog.Level) PoolOption {
	return func(c *poolConfig) {
		c.logLevel = &level
	}
}

// resolveLogger applies the log level, if any, to the configured logger.
func (c *poolConfig) resolveLogger() {
	if c.logLevel != nil {
		c.logger = observability.WithMinLevel(c.logger, *c.logLevel)
	}
}

// WithMetrics enables or disables OpenTelemetry metrics.
// Default: false
//
// Metrics are recorded through the global meter provider; configure it
// before creating the pool.
func WithMetrics(enabled bool) PoolOption {
	return func(c *poolConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(rec observability.MetricsRecorder) PoolOption {
	return func(c *poolConfig) {
		if rec != nil {
			c.metrics = rec
		}
	}
}

// WithTracing enables or disables OpenTelemetry tracing.
// Default: false
//
// Each dispatch becomes a span; a dispatch posted from inside a handler
// becomes a child of the dispatch that invoked the handler.
func WithTracing(enabled bool) PoolOption {
	return func(c *poolConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets a custom span manager.
func WithSpanManager(sm observability.SpanManager) PoolOption {
	return func(c *poolConfig) {
		if sm != nil {
			c.spans = sm
		}
	}
}

// WithUniqueListeners makes Add ignore a listener that is already registered
// or already waiting to be registered.
// Default: duplicates are kept and invoked once per registration.
func WithUniqueListeners() PoolOption {
	return func(c *poolConfig) {
		c.unique = true
	}
}

// WithRecover recovers handler panics instead of letting them unwind
// through Dispatch. The recovered panic is logged, passed to fn when fn is
// non-nil, and treated as Propagate.
func WithRecover(fn func(*PanicError)) PoolOption {
	return func(c *poolConfig) {
		c.recover = true
		c.onPanic = fn
	}
}

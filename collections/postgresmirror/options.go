package postgresmirror

import (
	"github.com/AntonStoeckl/observable-collections-go/collections"
)

// Option defines a functional option for configuring a Mirror.
type Option func(*settings) error

// settings carries the configured pieces until the generic mirror
// instance exists; options stay non-generic this way and type inference
// keeps working at construction call sites.
type settings struct {
	tableName        string
	logger           collections.Logger
	contextualLogger collections.ContextualLogger
	metricsCollector collections.MetricsCollector
	tracingCollector collections.TracingCollector
}

func applyOptions(options []Option) (settings, error) {
	var s settings

	for _, option := range options {
		if err := option(&s); err != nil {
			return settings{}, err
		}
	}

	return s, nil
}

// WithTableName sets the table name for the Mirror.
func WithTableName(tableName string) Option {
	return func(s *settings) error {
		if tableName == "" {
			return collections.ErrEmptyMirrorTableNameSupplied
		}

		s.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Mirror.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Item counts, durations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger collections.Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Mirror.
// The contextual logger will receive log messages with context information including
// automatic trace/span correlation when tracing is enabled, enabling unified observability.
func WithContextualLogger(logger collections.ContextualLogger) Option {
	return func(s *settings) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Mirror.
// The metrics collector will receive performance and operational metrics including
// load/purge durations, item counts, and database errors. If the collector also
// implements collections.ContextualMetricsCollector, the context-aware methods
// are preferred for trace correlation.
func WithMetrics(collector collections.MetricsCollector) Option {
	return func(s *settings) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Mirror.
// The tracing collector will receive distributed tracing information including
// span creation for load/purge operations, context propagation, and error tracking.
func WithTracing(collector collections.TracingCollector) Option {
	return func(s *settings) error {
		s.tracingCollector = collector
		return nil
	}
}

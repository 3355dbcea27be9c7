package syncengine

import (
	"time"

	"github.com/AntonStoeckl/observable-collections-go/collections"
)

// Logger interface for operational logging, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting collection performance and operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// Option defines a functional option for configuring a synchronized collection.
type Option func(*settings) error

// settings carries the configured pieces until the generic collection
// instance exists; options stay non-generic this way and type inference
// keeps working at construction call sites.
type settings struct {
	dispatcher       collections.Dispatcher
	logger           Logger
	metricsCollector MetricsCollector
	collectionName   string
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

// WithDispatcher sets the notification dispatcher for the collection.
// With a dispatcher configured, all reset and property-changed
// notifications are marshalled to it, and iterators switch from the
// adapter's native iterator to the per-step locked atomic iterator.
func WithDispatcher(dispatcher collections.Dispatcher) Option {
	return func(s *settings) error {
		if dispatcher == nil {
			return collections.ErrNilDispatcher
		}

		s.dispatcher = dispatcher

		return nil
	}
}

// WithCollectionName sets a stable name used in log attributes and metric
// labels, so several collections can share one observability backend.
func WithCollectionName(collectionName string) Option {
	return func(s *settings) error {
		if collectionName == "" {
			return collections.ErrEmptyCollectionNameSupplied
		}

		s.collectionName = collectionName

		return nil
	}
}

// WithLogger sets the logger for the collection.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: reset coalescing decisions and disposal (development use)
// Warn level: non-critical issues like teardown cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the collection.
// The metrics collector will receive operational metrics including
// snapshot durations and counts of forwarded and suppressed resets.
func WithMetrics(collector MetricsCollector) Option {
	return func(s *settings) error {
		s.metricsCollector = collector
		return nil
	}
}

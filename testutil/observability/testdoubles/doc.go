// Package testdoubles provides test doubles (spies) for observability interfaces.
//
// This package contains spy implementations for the observability interfaces
// used by the collection engines:
//   - LoggerSpy: captures basic logging calls for verification
//   - ContextualLoggerSpy: captures structured logging with context
//   - MetricsCollectorSpy: captures metrics recording calls for verification
//   - TracingCollectorSpy: captures tracing spans and events
//
// These test doubles enable comprehensive testing of observability instrumentation
// without requiring actual telemetry backends.
package testdoubles

package postgresmirror

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/observable-collections-go/collections"
)

const (
	operationLoad  = "load"
	operationPurge = "purge"
	statusSuccess  = "success"
	statusError    = "error"

	spanNameLoad  = "mirror.load"
	spanNamePurge = "mirror.purge"

	spanAttrOperation    = "operation"
	spanAttrTable        = "table"
	spanAttrItemCount    = "item_count"
	spanAttrRowsAffected = "rows_affected"
	spanAttrDurationMS   = "duration_ms"
	spanAttrErrorType    = "error_type"

	metricLoadDuration   = "mirror_load_duration_seconds"
	metricItemsLoaded    = "mirror_items_loaded_total"
	metricPurgeDuration  = "mirror_purge_duration_seconds"
	metricRowsPurged     = "mirror_rows_purged_total"
	metricDatabaseErrors = "mirror_database_errors_total"

	errorTypeBuildQuery     = "build_query"
	errorTypeDatabaseQuery  = "database_query"
	errorTypeScanRow        = "scan_row"
	errorTypeInvalidPayload = "invalid_payload"
	errorTypeDecodePayload  = "decode_payload"
	errorTypeRowIteration   = "row_iteration"
	errorTypeDatabaseExec   = "database_exec"
	errorTypeRowsAffected   = "rows_affected"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (m *Mirror[T]) logQueryWithDuration(
	sqlQuery string,
	action string,
	duration time.Duration,
) {
	if m.logger != nil {
		m.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, m.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (m *Mirror[T]) logOperation(action string, args ...any) {
	if m.logger != nil {
		m.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level if the logger is configured.
func (m *Mirror[T]) logWarn(message string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level if the logger is configured.
func (m *Mirror[T]) logError(
	message string,
	err error,
	args ...any,
) {
	if m.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		m.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (m *Mirror[T]) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordErrorMetricsContext records error metrics with context if the collector supports it.
func (m *Mirror[T]) recordErrorMetricsContext(ctx context.Context, operation, errorType string) {
	if m.metricsCollector != nil {
		labels := map[string]string{
			spanAttrOperation: operation,
			"status":          statusError,
			spanAttrErrorType: errorType,
		}

		// Use context-aware method if available
		if contextualCollector, ok := m.metricsCollector.(collections.ContextualMetricsCollector); ok {
			contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
		} else {
			m.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
		}
	}
}

// recordDurationMetricsContext records duration metrics with context if the collector supports it.
func (m *Mirror[T]) recordDurationMetricsContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation, status string,
) {
	if m.metricsCollector != nil {
		labels := map[string]string{
			spanAttrOperation: operation,
			"status":          status,
		}

		// Use context-aware method if available
		if contextualCollector, ok := m.metricsCollector.(collections.ContextualMetricsCollector); ok {
			contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
		} else {
			m.metricsCollector.RecordDuration(metricName, duration, labels)
		}
	}
}

// recordValueMetricsContext records value metrics with context if the collector supports it.
func (m *Mirror[T]) recordValueMetricsContext(
	ctx context.Context,
	metricName string,
	value float64,
	operation,
	status string,
) {
	if m.metricsCollector != nil {
		labels := map[string]string{
			spanAttrOperation: operation,
			"status":          status,
		}

		// Use context-aware method if available
		if contextualCollector, ok := m.metricsCollector.(collections.ContextualMetricsCollector); ok {
			contextualCollector.RecordValueContext(ctx, metricName, value, labels)
		} else {
			m.metricsCollector.RecordValue(metricName, value, labels)
		}
	}
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (m *Mirror[T]) startTraceSpan(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (context.Context, collections.SpanContext) {
	if m.tracingCollector != nil {
		return m.tracingCollector.StartSpan(ctx, operation, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (m *Mirror[T]) finishTraceSpan(
	spanCtx collections.SpanContext,
	status string,
	attrs map[string]string,
) {
	if m.tracingCollector != nil && spanCtx != nil {
		m.tracingCollector.FinishSpan(spanCtx, status, attrs)
	}
}

// startLoadSpan starts a tracing span for load operations.
func (m *Mirror[T]) startLoadSpan(ctx context.Context) (context.Context, collections.SpanContext) {
	spanAttrs := map[string]string{
		spanAttrOperation: operationLoad,
		spanAttrTable:     m.tableName,
	}

	return m.startTraceSpan(ctx, spanNameLoad, spanAttrs)
}

// finishLoadSpanSuccess finishes a successful load span with results.
func (m *Mirror[T]) finishLoadSpanSuccess(
	span collections.SpanContext,
	itemCount int,
	duration time.Duration,
) {
	if span != nil {
		span.SetStatus(statusSuccess)
		span.AddAttribute(spanAttrItemCount, fmt.Sprintf("%d", itemCount))
		span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", float64(duration.Nanoseconds())/1e6))
	}

	m.finishTraceSpan(span, statusSuccess, map[string]string{
		spanAttrItemCount: fmt.Sprintf("%d", itemCount),
	})
}

// finishLoadSpanError finishes a load span with error details.
func (m *Mirror[T]) finishLoadSpanError(
	span collections.SpanContext,
	errorType string,
	duration time.Duration,
) {
	if span != nil {
		span.SetStatus(statusError)
		span.AddAttribute(spanAttrErrorType, errorType)

		if duration > 0 {
			span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", float64(duration.Nanoseconds())/1e6))
		}
	}

	m.finishTraceSpan(span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// startPurgeSpan starts a tracing span for purge operations.
func (m *Mirror[T]) startPurgeSpan(ctx context.Context) (context.Context, collections.SpanContext) {
	spanAttrs := map[string]string{
		spanAttrOperation: operationPurge,
		spanAttrTable:     m.tableName,
	}

	return m.startTraceSpan(ctx, spanNamePurge, spanAttrs)
}

// finishPurgeSpanSuccess finishes a successful purge span with results.
func (m *Mirror[T]) finishPurgeSpanSuccess(
	span collections.SpanContext,
	rowsAffected int64,
	duration time.Duration,
) {
	if span != nil {
		span.SetStatus(statusSuccess)
		span.AddAttribute(spanAttrRowsAffected, fmt.Sprintf("%d", rowsAffected))
		span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", float64(duration.Nanoseconds())/1e6))
	}

	m.finishTraceSpan(span, statusSuccess, map[string]string{
		spanAttrRowsAffected: fmt.Sprintf("%d", rowsAffected),
	})
}

// finishPurgeSpanError finishes a purge span with error details.
func (m *Mirror[T]) finishPurgeSpanError(
	span collections.SpanContext,
	errorType string,
	duration time.Duration,
) {
	if span != nil {
		span.SetStatus(statusError)
		span.AddAttribute(spanAttrErrorType, errorType)

		if duration > 0 {
			span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", float64(duration.Nanoseconds())/1e6))
		}
	}

	m.finishTraceSpan(span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// === Tracing Observer Pattern ===
// These observers simplify tracing span management by encapsulating lifecycle complexity.

// loadTracingObserver encapsulates tracing span lifecycle management for load operations.
type loadTracingObserver[T any] struct {
	m    *Mirror[T]
	span collections.SpanContext
}

// purgeTracingObserver encapsulates tracing span lifecycle management for purge operations.
type purgeTracingObserver[T any] struct {
	m    *Mirror[T]
	span collections.SpanContext
}

// startLoadTracing creates a new tracing observer for load operations.
func (m *Mirror[T]) startLoadTracing(ctx context.Context) (*loadTracingObserver[T], context.Context) {
	newCtx, span := m.startLoadSpan(ctx)

	return &loadTracingObserver[T]{
		m:    m,
		span: span,
	}, newCtx
}

// startPurgeTracing creates a new tracing observer for purge operations.
func (m *Mirror[T]) startPurgeTracing(ctx context.Context) (*purgeTracingObserver[T], context.Context) {
	newCtx, span := m.startPurgeSpan(ctx)

	return &purgeTracingObserver[T]{
		m:    m,
		span: span,
	}, newCtx
}

// finishError completes the load tracing span with error details.
func (lto *loadTracingObserver[T]) finishError(errorType string, duration time.Duration) {
	if lto.span == nil {
		return
	}

	lto.m.finishLoadSpanError(lto.span, errorType, duration)
}

// finishSuccess completes the load tracing span for successful operations.
func (lto *loadTracingObserver[T]) finishSuccess(itemCount int, duration time.Duration) {
	if lto.span == nil {
		return
	}

	lto.m.finishLoadSpanSuccess(lto.span, itemCount, duration)
}

// finishError completes the purge operation's tracing span with error details.
func (pto *purgeTracingObserver[T]) finishError(errorType string, duration time.Duration) {
	if pto.span == nil {
		return
	}

	pto.m.finishPurgeSpanError(pto.span, errorType, duration)
}

// finishSuccess completes the purge operation's tracing span for successful operations.
func (pto *purgeTracingObserver[T]) finishSuccess(rowsAffected int64, duration time.Duration) {
	if pto.span == nil {
		return
	}

	pto.m.finishPurgeSpanSuccess(pto.span, rowsAffected, duration)
}

// === Metrics Observer Pattern ===
// These observers simplify the metrics collection by encapsulating recording complexity.

// loadMetricsObserver encapsulates the metrics collection for load operations.
type loadMetricsObserver[T any] struct {
	m   *Mirror[T]
	ctx context.Context
}

// purgeMetricsObserver encapsulates the metrics collection for purge operations.
type purgeMetricsObserver[T any] struct {
	m   *Mirror[T]
	ctx context.Context
}

// startLoadMetrics creates a new metrics observer for load operations.
func (m *Mirror[T]) startLoadMetrics(ctx context.Context) *loadMetricsObserver[T] {
	return &loadMetricsObserver[T]{
		m:   m,
		ctx: ctx,
	}
}

// startPurgeMetrics creates a new metrics observer for purge operations.
func (m *Mirror[T]) startPurgeMetrics(ctx context.Context) *purgeMetricsObserver[T] {
	return &purgeMetricsObserver[T]{
		m:   m,
		ctx: ctx,
	}
}

// recordSuccess records all metrics for a successful load operation.
func (lmo *loadMetricsObserver[T]) recordSuccess(itemCount int, duration time.Duration) {
	lmo.m.recordDurationMetricsContext(lmo.ctx, metricLoadDuration, duration, operationLoad, statusSuccess)
	lmo.m.recordValueMetricsContext(lmo.ctx, metricItemsLoaded, float64(itemCount), operationLoad, statusSuccess)
}

// recordError records all metrics for a failed load operation.
func (lmo *loadMetricsObserver[T]) recordError(errorType string, duration time.Duration) {
	lmo.m.recordDurationMetricsContext(lmo.ctx, metricLoadDuration, duration, operationLoad, statusError)
	lmo.m.recordErrorMetricsContext(lmo.ctx, operationLoad, errorType)
}

// recordSuccess records all metrics for a successful purge operation.
func (pmo *purgeMetricsObserver[T]) recordSuccess(rowsAffected int64, duration time.Duration) {
	pmo.m.recordDurationMetricsContext(pmo.ctx, metricPurgeDuration, duration, operationPurge, statusSuccess)
	pmo.m.recordValueMetricsContext(pmo.ctx, metricRowsPurged, float64(rowsAffected), operationPurge, statusSuccess)
}

// recordError records all metrics for a failed purge operation.
func (pmo *purgeMetricsObserver[T]) recordError(errorType string, duration time.Duration) {
	pmo.m.recordDurationMetricsContext(pmo.ctx, metricPurgeDuration, duration, operationPurge, statusError)
	pmo.m.recordErrorMetricsContext(pmo.ctx, operationPurge, errorType)
}

// === Contextual Logging Pattern ===
// These methods provide context-aware logging with automatic trace correlation when available.

// logQueryWithDurationContext logs SQL queries with execution time and context correlation.
func (m *Mirror[T]) logQueryWithDurationContext(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {
	if m.contextualLogger != nil {
		m.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, m.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperationContext logs operational information with context correlation.
func (m *Mirror[T]) logOperationContext(ctx context.Context, action string, args ...any) {
	if m.contextualLogger != nil {
		m.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logErrorContext logs error information with context correlation.
func (m *Mirror[T]) logErrorContext(
	ctx context.Context,
	message string,
	err error,
	args ...any,
) {
	if m.contextualLogger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		m.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

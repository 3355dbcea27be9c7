package syncengine

import (
	"time"
)

// logDebug logs coalescing and lifecycle details at debug level if the logger is configured.
func (c *Collection[T]) logDebug(message string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(message, c.identityAttrs(args)...)
	}
}

// logWarn logs non-critical issues at warn level if the logger is configured.
func (c *Collection[T]) logWarn(message string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(message, c.identityAttrs(args)...)
	}
}

// identityAttrs prepends the collection identity to the supplied log attributes.
func (c *Collection[T]) identityAttrs(args []any) []any {
	allArgs := []any{logAttrCollectionID, c.id.String()}

	if c.collectionName != "" {
		allArgs = append(allArgs, logAttrCollectionName, c.collectionName)
	}

	return append(allArgs, args...)
}

// incrementCounter increments a counter metric if the metrics collector is configured.
func (c *Collection[T]) incrementCounter(metric string) {
	if c.metricsCollector != nil {
		c.metricsCollector.IncrementCounter(metric, c.metricLabels(nil))
	}
}

// recordSnapshotDuration records the duration of a snapshot operation if the metrics collector is configured.
func (c *Collection[T]) recordSnapshotDuration(operation string, duration time.Duration) {
	if c.metricsCollector != nil {
		labels := c.metricLabels(map[string]string{labelOperation: operation})
		c.metricsCollector.RecordDuration(metricSnapshotDuration, duration, labels)
	}
}

func (c *Collection[T]) metricLabels(extra map[string]string) map[string]string {
	labels := make(map[string]string, len(extra)+1)

	for key, value := range extra {
		labels[key] = value
	}

	if c.collectionName != "" {
		labels[labelCollection] = c.collectionName
	}

	return labels
}

package metrics

import "time"

// Store operation outcomes
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeDuplicate = "duplicate"
)

// RecordStoreOperation records the count and latency of one store operation.
func RecordStoreOperation(collection, operation, outcome string, start time.Time) {
	StoreOperationsTotal.WithLabelValues(collection, operation, outcome).Inc()
	StoreOperationDuration.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
}

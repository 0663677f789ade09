package metrics

import (
	"strconv"
	"time"
)

// Outcome labels
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// RecordAllocation records one allocation run over children siblings.
// failures maps each failure reason to its count.
func (r *Registry) RecordAllocation(method string, children int, failures map[string]int, duration time.Duration) {
	status := StatusSuccess
	if len(failures) > 0 {
		status = StatusPartial
	}
	r.AllocationsTotal.WithLabelValues(method, status).Inc()
	for reason, n := range failures {
		r.AllocationFailuresTotal.WithLabelValues(method, reason).Add(float64(n))
	}
	r.AllocatedChildrenPerCall.Observe(float64(children))
	r.CalculationDuration.WithLabelValues("allocate").Observe(duration.Seconds())
}

// RecordAllocationError records an allocation run rejected with a hard error.
func (r *Registry) RecordAllocationError(method string) {
	r.AllocationsTotal.WithLabelValues(method, StatusError).Inc()
}

// RecordGoalCalculation records a goal calculation.
func (r *Registry) RecordGoalCalculation(measure, status string, duration time.Duration) {
	r.GoalCalculationsTotal.WithLabelValues(measure, status).Inc()
	r.CalculationDuration.WithLabelValues("calculate_goals").Observe(duration.Seconds())
}

// RecordSimilarItem records a similar item analysis and the 1-based slots
// of any equations that failed.
func (r *Registry) RecordSimilarItem(method, status string, failedSlots []int, duration time.Duration) {
	r.SimilarItemTotal.WithLabelValues(method, status).Inc()
	for _, slot := range failedSlots {
		r.EquationErrorsTotal.WithLabelValues(strconv.Itoa(slot)).Inc()
	}
	r.CalculationDuration.WithLabelValues("similar_item").Observe(duration.Seconds())
}

// RecordStoreOperation records a program database operation
func (r *Registry) RecordStoreOperation(operation, status string, duration time.Duration) {
	r.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	r.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetHardwareItems records the size of the loaded tree.
func (r *Registry) SetHardwareItems(n int) {
	r.HardwareItemsLoaded.Set(float64(n))
}

// RecordEvent records a published event, and whether any subscriber
// dropped it.
func (r *Registry) RecordEvent(topic string, dropped int) {
	r.EventsPublishedTotal.WithLabelValues(topic).Inc()
	if dropped > 0 {
		r.EventsDroppedTotal.WithLabelValues(topic).Add(float64(dropped))
	}
}

// RecordBridgedEvent records an event forwarded over the event bridge.
func (r *Registry) RecordBridgedEvent(status string) {
	r.EventsBridgedTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Calculation Metrics
	AllocationsTotal         *prometheus.CounterVec
	AllocationFailuresTotal  *prometheus.CounterVec
	GoalCalculationsTotal    *prometheus.CounterVec
	SimilarItemTotal         *prometheus.CounterVec
	EquationErrorsTotal      *prometheus.CounterVec
	CalculationDuration      *prometheus.HistogramVec
	AllocatedChildrenPerCall prometheus.Histogram

	// Program Database Metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec
	HardwareItemsLoaded    prometheus.Gauge

	// Event Metrics
	EventsPublishedTotal *prometheus.CounterVec
	EventsDroppedTotal   *prometheus.CounterVec
	EventsBridgedTotal   *prometheus.CounterVec

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// System Metrics
	UptimeSeconds prometheus.GaugeFunc

	registry  *prometheus.Registry
	startTime time.Time
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
	}

	r.initCalculationMetrics()
	r.initStoreMetrics()
	r.initEventMetrics()
	r.initHTTPMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStoreMetrics() {
	r.StoreOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ramstk_store_operations_total",
			Help: "Total number of program database operations",
		},
		[]string{"operation", "status"},
	)

	r.StoreOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ramstk_store_operation_duration_seconds",
			Help:    "Program database operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"operation"},
	)

	r.HardwareItemsLoaded = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ramstk_hardware_items",
			Help: "Number of hardware items in the loaded tree",
		},
	)
}

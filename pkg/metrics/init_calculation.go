package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCalculationMetrics() {
	r.AllocationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ramstk_allocations_total",
			Help: "Total number of allocation runs by method and outcome",
		},
		[]string{"method", "status"},
	)

	r.AllocationFailuresTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ramstk_allocation_failures_total",
			Help: "Children whose allocation was zeroed by a recoverable failure",
		},
		[]string{"method", "reason"},
	)

	r.GoalCalculationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ramstk_goal_calculations_total",
			Help: "Total number of goal calculations by measure and outcome",
		},
		[]string{"measure", "status"},
	)

	r.SimilarItemTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ramstk_similar_item_total",
			Help: "Total number of similar item analyses by method and outcome",
		},
		[]string{"method", "status"},
	)

	r.EquationErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ramstk_equation_errors_total",
			Help: "User-defined equations that failed to evaluate",
		},
		[]string{"slot"},
	)

	r.CalculationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ramstk_calculation_duration_seconds",
			Help:    "Calculation duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"operation"},
	)

	r.AllocatedChildrenPerCall = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ramstk_allocation_children",
			Help:    "Number of children apportioned per allocation run",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)
}

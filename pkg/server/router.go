package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/ramstk-analysis/pkg/health"
	"github.com/dd0wney/ramstk-analysis/pkg/logging"
	"github.com/dd0wney/ramstk-analysis/pkg/metrics"
)

// maxBodyBytes limits request bodies on every route.
const maxBodyBytes = 1 << 20

// Routes are the handlers mounted by NewRouter. Nil handlers are skipped.
type Routes struct {
	GraphQL http.Handler
	Health  *health.HealthChecker
	Metrics *metrics.Registry
	Logger  logging.Logger
}

// NewRouter mounts
//
//	POST /graphql   the calculation API
//	GET  /health    every registered check
//	GET  /ready     readiness checks
//	GET  /metrics   Prometheus exposition
func NewRouter(routes Routes) *mux.Router {
	logger := routes.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	router := mux.NewRouter()

	if routes.GraphQL != nil {
		router.Handle("/graphql", routes.GraphQL).Methods(http.MethodPost, http.MethodOptions)
	}
	if routes.Health != nil {
		router.HandleFunc("/health", routes.Health.HTTPHandler()).Methods(http.MethodGet)
		router.HandleFunc("/ready", routes.Health.ReadinessHandler()).Methods(http.MethodGet)
	}
	if routes.Metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(
			routes.Metrics.GetPrometheusRegistry(),
			promhttp.HandlerOpts{},
		)).Methods(http.MethodGet)
	}

	router.Use(recoveryMiddleware(logger))
	router.Use(loggingMiddleware(logger))
	if routes.Metrics != nil {
		router.Use(metricsMiddleware(routes.Metrics))
	}
	router.Use(bodySizeLimitMiddleware(maxBodyBytes))

	return router
}

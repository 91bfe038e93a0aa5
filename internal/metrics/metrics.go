// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	discoveryRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_runs_total",
			Help: "Total number of discovery runs by outcome",
		},
		[]string{"outcome"},
	)

	providerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_provider_errors_total",
			Help: "Total number of recovered provider errors",
		},
		[]string{"kind"},
	)

	leadsAccumulated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_leads_accumulated_total",
			Help: "Candidate leads accumulated per provider kind",
		},
		[]string{"kind"},
	)

	duplicatesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_duplicates_skipped_total",
			Help: "Candidate leads dropped because they were already stored",
		},
	)
)

// Middleware records request counts and latency per route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			httpRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the default registry.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

func RecordDiscoveryRun(outcome string) {
	discoveryRuns.WithLabelValues(outcome).Inc()
}

func RecordProviderError(kind string) {
	providerErrors.WithLabelValues(kind).Inc()
}

func RecordLeadsAccumulated(kind string, n int) {
	leadsAccumulated.WithLabelValues(kind).Add(float64(n))
}

func RecordDuplicatesSkipped(n int) {
	duplicatesSkipped.Add(float64(n))
}

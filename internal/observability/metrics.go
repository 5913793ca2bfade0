package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	calcDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}
)

// Metrics holds all Prometheus metric instruments for the estimator.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Calculation metrics
	CalculationsTotal   *prometheus.CounterVec
	CalculationDuration *prometheus.HistogramVec

	// Config cache metrics
	ConfigCacheHitsTotal   prometheus.Counter
	ConfigCacheMissesTotal prometheus.Counter
	ConfigLoadsTotal       *prometheus.CounterVec

	// Config store metrics
	ConfigSavesTotal        *prometheus.CounterVec
	ConfigChangeEventsTotal prometheus.Counter
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estimator_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "estimator_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),

		CalculationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estimator_calculations_total",
			Help: "Total number of pricing calculations.",
		}, []string{"service_id", "status"}),
		CalculationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "estimator_calculation_duration_seconds",
			Help:    "Pricing calculation duration in seconds.",
			Buckets: calcDurationBuckets,
		}, []string{"service_id"}),

		ConfigCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estimator_config_cache_hits_total",
			Help: "Total config cache hits.",
		}),
		ConfigCacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estimator_config_cache_misses_total",
			Help: "Total config cache misses.",
		}),
		ConfigLoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estimator_config_loads_total",
			Help: "Total config loads from the backing store.",
		}, []string{"status"}),

		ConfigSavesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estimator_config_saves_total",
			Help: "Total config save attempts.",
		}, []string{"status"}),
		ConfigChangeEventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estimator_config_change_events_total",
			Help: "Total config change events published.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CalculationsTotal,
		m.CalculationDuration,
		m.ConfigCacheHitsTotal,
		m.ConfigCacheMissesTotal,
		m.ConfigLoadsTotal,
		m.ConfigSavesTotal,
		m.ConfigChangeEventsTotal,
	)

	return m
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware records request count and duration per route pattern.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(sw.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

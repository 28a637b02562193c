package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the global container of Prometheus collectors exposed by
// dispatch-svc.
type Metrics struct {
	// HTTP transport metrics.
	RequestsTotal   *prometheus.CounterVec
	SuccessTotal    *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Engine / solve metrics.
	SolveDuration     *prometheus.HistogramVec
	SolveStatusTotal  *prometheus.CounterVec
	OrdersPerRequest  prometheus.Histogram
	ChannelsPerReq    prometheus.Histogram
	FallbackTotal     prometheus.Counter
	CacheHitsTotal    prometheus.Counter
	CacheMissesTotal  prometheus.Counter

	// System metrics.
	Goroutines prometheus.Gauge

	// Service info.
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics builds and registers the metrics for dispatch-svc under the
// given namespace/subsystem.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests received, by route",
			},
			[]string{"route"},
		),

		SuccessTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "success_total",
				Help:      "Total number of HTTP requests answered with a status below 400, by route",
			},
			[]string{"route"},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "errors_total",
				Help:      "Total number of HTTP requests that failed, by route and error code",
			},
			[]string{"route", "code"},
		),

		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "End-to-end HTTP request duration",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"route"},
		),

		SolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Wall-clock time spent inside the assignment engine",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"status"},
		),

		SolveStatusTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_status_total",
				Help:      "Count of solves by terminal status (OPTIMAL, FEASIBLE, FALLBACK)",
			},
			[]string{"status"},
		),

		OrdersPerRequest: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_per_request",
				Help:      "Number of orders in each request",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),

		ChannelsPerReq: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "channels_per_request",
				Help:      "Number of channels in each request",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
			},
		),

		FallbackTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fallback_total",
				Help:      "Total number of solves that fell back to the greedy heuristic",
			},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of response cache hits",
			},
		),

		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_misses_total",
				Help:      "Total number of response cache misses",
			},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service build information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the global metrics instance, lazily initializing a default
// one if none has been created yet.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("dispatch", "")
	}
	return defaultMetrics
}

// RecordRequest records the outcome of one HTTP request on the given route.
func (m *Metrics) RecordRequest(route string, errCode string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
	if errCode == "" {
		m.SuccessTotal.WithLabelValues(route).Inc()
		return
	}
	m.ErrorsTotal.WithLabelValues(route, errCode).Inc()
}

// RecordSolve records the outcome of one engine Solve call.
func (m *Metrics) RecordSolve(status string, duration time.Duration, usedFallback bool) {
	m.SolveStatusTotal.WithLabelValues(status).Inc()
	m.SolveDuration.WithLabelValues(status).Observe(duration.Seconds())
	if usedFallback {
		m.FallbackTotal.Inc()
	}
}

// RecordRequestSize records the number of orders and channels in a request.
func (m *Metrics) RecordRequestSize(orders, channels int) {
	m.OrdersPerRequest.Observe(float64(orders))
	m.ChannelsPerReq.Observe(float64(channels))
}

// RecordCacheHit increments the cache hit counter.
func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// SetServiceInfo sets the service_info gauge to 1 for the given labels.
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler returns the HTTP handler that exposes metrics in the Prometheus
// text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer runs a standalone HTTP server exposing /metrics and
// /health on the given port. Used when metrics are served on a separate
// port from the main API.
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}

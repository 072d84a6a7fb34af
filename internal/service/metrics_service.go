package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the gateway
// and the solve lifecycle running behind it.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	solveDuration  *prometheus.HistogramVec
	solveVariables *prometheus.HistogramVec
	solveStatus    *prometheus.CounterVec
	jobsActive     prometheus.Gauge
}

// NewMetricsService registers the Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	solveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solve_duration_seconds",
		Help:    "Duration of an optimisation solve run",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"engine", "status"})

	solveVariables := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solve_variables_total",
		Help:    "Number of decision variables built for a solve run",
		Buckets: prometheus.ExponentialBuckets(100, 4, 10),
	}, []string{"engine"})

	solveStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solve_status_total",
		Help: "Terminal status counts for solve runs",
	}, []string{"engine", "status"})

	jobsActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jobs_active",
		Help: "Number of asynchronous jobs currently running",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, solveDuration, solveVariables, solveStatus, jobsActive, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		solveDuration:   solveDuration,
		solveVariables:  solveVariables,
		solveStatus:     solveStatus,
		jobsActive:      jobsActive,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveSolve records one solve run's duration, variable count, and
// terminal status.
func (m *MetricsService) ObserveSolve(engineUsed, status string, duration time.Duration, variables int) {
	if m == nil {
		return
	}
	m.solveDuration.WithLabelValues(engineUsed, status).Observe(duration.Seconds())
	m.solveVariables.WithLabelValues(engineUsed).Observe(float64(variables))
	m.solveStatus.WithLabelValues(engineUsed, status).Inc()
}

// JobStarted/JobFinished track the in-flight async job gauge.
func (m *MetricsService) JobStarted() {
	if m == nil {
		return
	}
	m.jobsActive.Inc()
}

func (m *MetricsService) JobFinished() {
	if m == nil {
		return
	}
	m.jobsActive.Dec()
}

// Package metrics collects and exposes Prometheus metrics for the
// back-office API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the slice of the collector handlers and services use.
type Recorder interface {
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)
	RecordCRUDOperation(collection, operation string)
	RecordGateAttempt(success bool)
	RecordConfirmation(approved bool)
}

// Collector implements Recorder on top of Prometheus.
type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpLatency   prometheus.Histogram
	crudOps       *prometheus.CounterVec
	gateAttempts  *prometheus.CounterVec
	confirmations *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_http_requests_total",
			Help: "HTTP requests by method, path and status code",
		}, []string{"method", "path", "status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "backoffice_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		crudOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_crud_operations_total",
			Help: "CRUD operations by collection and operation",
		}, []string{"collection", "operation"}),
		gateAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_gate_attempts_total",
			Help: "Password gate submissions by outcome",
		}, []string{"outcome"}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_confirmations_total",
			Help: "Resolved delete confirmations by answer",
		}, []string{"answer"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.crudOps,
		c.gateAttempts,
		c.confirmations,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordCRUDOperation(collection, operation string) {
	c.crudOps.WithLabelValues(collection, operation).Inc()
}

func (c *Collector) RecordGateAttempt(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.gateAttempts.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordConfirmation(approved bool) {
	answer := "rejected"
	if approved {
		answer = "approved"
	}
	c.confirmations.WithLabelValues(answer).Inc()
}

// Handler returns the scrape endpoint for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency for every route.
func Middleware(rec Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}
			rec.RecordHTTPRequest(r.Method, r.URL.Path, status, time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

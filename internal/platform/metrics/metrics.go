// Package metrics exposes Prometheus counters for HTTP traffic, record edits
// and snapshot store outcomes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	snapshotOps  *prometheus.CounterVec
	recordEdits  *prometheus.CounterVec
}

// NewCollector registers the service metrics plus the Go and process
// collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		snapshotOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_operations_total",
				Help: "Snapshot store operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		recordEdits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anesthesia_record_edits_total",
				Help: "Edits applied to anesthesia records by section",
			},
			[]string{"section"},
		),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.snapshotOps,
		c.recordEdits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// SnapshotOp counts a snapshot store operation. A nil collector is a no-op.
func (c *Collector) SnapshotOp(op, outcome string) {
	if c == nil {
		return
	}
	c.snapshotOps.WithLabelValues(op, outcome).Inc()
}

// RecordEdit counts an edit to a record section. A nil collector is a no-op.
func (c *Collector) RecordEdit(section string) {
	if c == nil {
		return
	}
	c.recordEdits.WithLabelValues(section).Inc()
}

// Middleware records request counts and latency keyed by the matched route.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			start := time.Now()
			err := next(ec)

			status := ec.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := ec.Path()
			if route == "" {
				route = "unmatched"
			}
			method := ec.Request().Method

			c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			c.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

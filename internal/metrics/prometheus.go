// Package metrics provides Prometheus metrics for the packing API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Allocation metrics
	SubmitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packing_submits_total",
			Help: "Allocation submits by outcome (accepted, rejected)",
		},
		[]string{"source", "outcome"},
	)

	SessionEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packing_session_events_total",
			Help: "Edits applied to allocation sessions",
		},
		[]string{"kind", "result"},
	)

	// Label metrics
	LabelsDerived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "packing_labels_derived_total",
			Help: "Box labels derived from packing lists",
		},
	)

	LabelRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "packing_label_render_duration_seconds",
			Help:    "Time taken to render labels",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"format"},
	)

	// Worker metrics
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packing_jobs_total",
			Help: "Background jobs processed by queue and outcome",
		},
		[]string{"queue", "outcome"},
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "packing_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveRender records the duration of one render started at start.
func ObserveRender(format string, start time.Time) {
	LabelRenderDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
}

// GinMiddleware records request duration keyed by the matched route, so
// path parameters do not explode cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

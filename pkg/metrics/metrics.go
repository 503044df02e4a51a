package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "civic",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "civic",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "civic",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	spamChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "civic",
			Subsystem: "spam_gate",
			Name:      "checks_total",
			Help:      "Spam classifier outcomes. result=error means the gate failed open.",
		},
		[]string{"result"},
	)

	blobOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "civic",
			Subsystem: "blob",
			Name:      "operations_total",
			Help:      "Blob store side effects by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
)

const (
	SPAM_RESULT_SPAM     = "spam"
	SPAM_RESULT_HAM      = "ham"
	SPAM_RESULT_ERROR    = "error"
	SPAM_RESULT_CACHED   = "cached"
	SPAM_RESULT_DISABLED = "disabled"
)

const (
	BLOB_OP_PUT          = "put"
	BLOB_OP_REMOVE       = "remove"
	BLOB_OP_COMPENSATE   = "compensate"
	BLOB_OP_ORPHAN_SWEEP = "orphan_sweep"
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		spamChecks,
		blobOperations,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latencies labelled by route template,
// so ids in paths do not explode label cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func RecordSpamCheck(result string) {
	spamChecks.WithLabelValues(result).Inc()
}

func RecordBlobOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	blobOperations.WithLabelValues(operation, outcome).Inc()
}

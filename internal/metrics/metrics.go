package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "water_service"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "submissions_total",
			Help:      "Sign-up submissions by outcome.",
		},
		[]string{"result"},
	)

	documentUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "uploads_total",
			Help:      "Document upload attempts by kind and outcome.",
		},
		[]string{"kind", "result"},
	)

	statusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "status_updates_total",
			Help:      "Admin status changes by target status.",
		},
		[]string{"status"},
	)

	backgroundJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "dispatched_total",
			Help:      "Background notification jobs by job name and outcome.",
		},
		[]string{"job", "result"},
	)
)

// Submission outcomes.
const (
	ResultSuccess         = "success"
	ResultValidationError = "validation_error"
	ResultPersistError    = "persist_error"
	ResultFailed          = "failed"
	ResultSkipped         = "skipped"
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		submissions,
		documentUploads,
		statusUpdates,
		backgroundJobs,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request count and latency keyed by the route pattern,
// so path parameters do not explode label cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordSubmission(result string) {
	submissions.WithLabelValues(result).Inc()
}

func RecordDocumentUpload(kind, result string) {
	documentUploads.WithLabelValues(kind, result).Inc()
}

func RecordStatusUpdate(status string) {
	statusUpdates.WithLabelValues(status).Inc()
}

func RecordBackgroundJob(job, result string) {
	backgroundJobs.WithLabelValues(job, result).Inc()
}

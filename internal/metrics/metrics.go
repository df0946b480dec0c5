package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kyc_arena",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kyc_arena",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	submissionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kyc_arena",
			Subsystem: "submissions",
			Name:      "created_total",
			Help:      "Total number of submissions created.",
		},
	)

	verdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kyc_arena",
			Subsystem: "submissions",
			Name:      "verdicts_total",
			Help:      "Status changes applied by reviewers, by new status.",
		},
		[]string{"status"},
	)

	submissionsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kyc_arena",
			Subsystem: "submissions",
			Name:      "deleted_total",
			Help:      "Total number of submissions deleted.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		submissionsCreated,
		verdicts,
		submissionsDeleted,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
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

// RecordSubmissionCreated counts a new submission.
func RecordSubmissionCreated() { submissionsCreated.Inc() }

// RecordVerdict counts a status change.
func RecordVerdict(status string) { verdicts.WithLabelValues(status).Inc() }

// RecordSubmissionsDeleted counts removed submissions.
func RecordSubmissionsDeleted(n int64) { submissionsDeleted.Add(float64(n)) }

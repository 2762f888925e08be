package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lucky_draw"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	draws = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "draws_total",
			Help:      "Resolved draws by tier and outcome label.",
		},
		[]string{"tier", "label"},
	)

	drawErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "draw_errors_total",
			Help:      "Draw attempts that did not produce a recorded result.",
		},
		[]string{"reason"},
	)

	ledgerAppends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "appends_total",
			Help:      "Ledger appends by status.",
		},
		[]string{"status"},
	)

	ledgerReadFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "read_failures_total",
			Help:      "Ledger reads degraded to an empty result.",
		},
		[]string{"view"},
	)

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
)

func init() {
	Registry.MustRegister(
		draws,
		drawErrors,
		ledgerAppends,
		ledgerReadFailures,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordDraw counts one resolved draw.
func RecordDraw(tier, label string) {
	draws.WithLabelValues(tier, label).Inc()
}

// RecordDrawError counts one failed play; reason is a short stable token.
func RecordDrawError(reason string) {
	drawErrors.WithLabelValues(reason).Inc()
}

// RecordAppend counts one ledger append attempt.
func RecordAppend(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	ledgerAppends.WithLabelValues(status).Inc()
}

// RecordReadFailure counts one degraded ledger read.
func RecordReadFailure(view string) {
	ledgerReadFailures.WithLabelValues(view).Inc()
}

// GinMiddleware records request count and latency per matched route.
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

package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streakmate",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "streakmate",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CheckIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streakmate",
			Name:      "checkins_total",
			Help:      "Total number of daily check-ins by result",
		},
		[]string{"result"},
	)
	WagersSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "streakmate",
			Name:      "wagers_settled_total",
			Help:      "Total number of wagers settled by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	XPGranted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "streakmate",
			Name:      "xp_granted_total",
			Help:      "Total XP credited through reward claims",
		},
	)
	NotificationsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "streakmate",
			Name:      "notifications_sent_total",
			Help:      "Total number of notifications written",
		},
	)
)

// GinMiddleware records request count and latency per route. The route
// template is used as the path label so IDs don't blow up cardinality.
func GinMiddleware() gin.HandlerFunc {
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

// Handler exposes the Prometheus scrape endpoint as a gin handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

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
			Namespace: "marketdev",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketdev",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	renderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketdev",
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Time spent rendering page markup.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"mode"},
	)

	renderCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketdev",
			Subsystem: "render",
			Name:      "cache_lookups_total",
			Help:      "Rendered page cache lookups by result.",
		},
		[]string{"result"},
	)

	pageSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketdev",
			Subsystem: "editor",
			Name:      "saves_total",
			Help:      "Editor save attempts by outcome.",
		},
		[]string{"outcome"},
	)

	editorSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "marketdev",
			Subsystem: "editor",
			Name:      "live_sessions",
			Help:      "Currently connected live editor sessions.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		renderDuration,
		renderCache,
		pageSaves,
		editorSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveRender records one render pass.
func ObserveRender(mode string, d time.Duration) {
	renderDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// CacheResult records a render cache lookup.
func CacheResult(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	renderCache.WithLabelValues(result).Inc()
}

// RecordSave records an editor save outcome: saved, rejected, failed or superseded.
func RecordSave(outcome string) {
	pageSaves.WithLabelValues(outcome).Inc()
}

// SessionOpened increments the live editor gauge.
func SessionOpened() { editorSessions.Inc() }

// SessionClosed decrements the live editor gauge.
func SessionClosed() { editorSessions.Dec() }

package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	EvaluationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_evaluations_total",
			Help: "Challenge evaluations by grading strategy",
		},
		[]string{"strategy"},
	)

	EvaluationCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluation_cache_hits_total",
			Help: "Evaluation results served from the fingerprint cache",
		},
	)

	AIGradingRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_grading_retries_total",
			Help: "Retried calls to the external grading capability",
		},
	)

	AIGradingFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_grading_failures_total",
			Help: "External grading calls that exhausted all attempts",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(EvaluationCounter)
	prometheus.MustRegister(EvaluationCacheHits)
	prometheus.MustRegister(AIGradingRetries)
	prometheus.MustRegister(AIGradingFailures)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

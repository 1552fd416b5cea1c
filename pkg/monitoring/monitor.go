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
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	AttemptsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewer_attempts_generated_total",
			Help: "Number of reviewer attempts generated",
		},
	)

	AttemptSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewer_attempt_submissions_total",
			Help: "Attempt submissions by outcome (completed, expired, conflict)",
		},
		[]string{"outcome"},
	)

	AttemptGrade = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reviewer_attempt_grade_percent",
			Help:    "Percentage grade of completed attempts",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	QuestionsSelected = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reviewer_questions_selected",
			Help:    "Questions drawn per generated attempt",
			Buckets: prometheus.LinearBuckets(10, 20, 8),
		},
	)
)

const (
	OutcomeCompleted = "completed"
	OutcomeExpired   = "expired"
	OutcomeConflict  = "conflict"
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(AttemptsGenerated)
	prometheus.MustRegister(AttemptSubmissions)
	prometheus.MustRegister(AttemptGrade)
	prometheus.MustRegister(QuestionsSelected)
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

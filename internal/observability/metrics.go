package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carelog_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// SignupsTotal counts successful signups by user type.
	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carelog_signups_total",
		Help: "Total number of successful signups by user type",
	}, []string{"user_type"})

	// LoginAttempts counts login attempts by outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carelog_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	// BlogsCreated counts created blog posts by category and draft status.
	BlogsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carelog_blogs_created_total",
		Help: "Total number of blog posts created by category and draft status",
	}, []string{"category", "draft"})

	// ActiveSessions is the gauge of live server-side sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "carelog_active_sessions",
		Help: "Number of active server-side sessions",
	})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carelog_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// ObserveQueryLatency records one database query on DatabaseQueryLatency.
func ObserveQueryLatency(operation, table string, elapsed time.Duration) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(elapsed.Seconds())
}

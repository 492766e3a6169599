package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ModerationDecisions counts blog status transitions by resulting status.
	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_moderation_decisions_total",
		Help: "Total number of blog moderation transitions",
	}, []string{"to_status"})

	// LikeToggles counts like toggles by direction.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_blog_like_toggles_total",
		Help: "Total number of blog like toggles",
	}, []string{"action"})

	// BlogViews counts views that were recorded against approved blogs.
	BlogViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_blog_views_total",
		Help: "Total number of counted blog views",
	})

	// CommentEvents counts comment lifecycle events by type.
	CommentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_comment_events_total",
		Help: "Total number of comment events",
	}, []string{"event"})

	// CacheLookups counts cache-aside lookups by result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_lookups_total",
		Help: "Total number of cache-aside lookups",
	}, []string{"result"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

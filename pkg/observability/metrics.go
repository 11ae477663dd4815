package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics for the service. Each collector owns
// its registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	FollowToggles *prometheus.CounterVec
	LikeToggles   *prometheus.CounterVec
	Comments      *prometheus.CounterVec

	NotificationsPersisted *prometheus.CounterVec
	NotificationFailures   *prometheus.CounterVec
	PushAttempts           *prometheus.CounterVec
	DeliveriesDropped      prometheus.Counter
	ActiveSessions         prometheus.Gauge

	DBOperations *prometheus.CounterVec
	DBDuration   *prometheus.HistogramVec

	DispatchDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		FollowToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "follow_transitions_total",
			Help:      "Follow edges created or removed",
		}, []string{"transition"}),
		LikeToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "like_transitions_total",
			Help:      "Likes added or removed",
		}, []string{"transition"}),
		Comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_operations_total",
			Help:      "Comments added or deleted",
		}, []string{"operation"}),
		NotificationsPersisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_persisted_total",
			Help:      "Notification records written",
		}, []string{"type"}),
		NotificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Notifications that could not be persisted after a committed mutation",
		}, []string{"type"}),
		PushAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_attempts_total",
			Help:      "Real-time push attempts by outcome",
		}, []string{"outcome"}),
		DeliveriesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_dropped_total",
			Help:      "Deliveries dropped because the dispatch queue was full",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Joined real-time sessions on this instance",
		}),
		DBOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DBDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Database operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Command and query handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"bus", "type", "outcome"}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.FollowToggles,
		c.LikeToggles,
		c.Comments,
		c.NotificationsPersisted,
		c.NotificationFailures,
		c.PushAttempts,
		c.DeliveriesDropped,
		c.ActiveSessions,
		c.DBOperations,
		c.DBDuration,
		c.DispatchDuration,
	)

	return c
}

// Registry exposes the underlying registry for gathering in tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the /metrics HTTP handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

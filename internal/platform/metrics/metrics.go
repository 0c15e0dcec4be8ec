package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersRegistered prometheus.Counter
	UserLogins      prometheus.Counter
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers metrics against a specific registerer. Tests pass a
// fresh registry so parallel suites do not collide on metric names.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_users_registered_total",
			Help: "Total number of users registered in the system",
		}),
		UserLogins: factory.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_user_logins_total",
			Help: "Total number of successful logins",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_cache_hits_total",
			Help: "List queries served from the cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_cache_misses_total",
			Help: "List queries that fell through to the store",
		}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "projecthub_events_published_total",
			Help: "Domain events successfully handed to the broker",
		}, []string{"topic"}),
		EventsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "projecthub_events_failed_total",
			Help: "Domain events that could not be published",
		}, []string{"topic"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "projecthub_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method", "status"}),
	}
}

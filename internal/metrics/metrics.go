package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fan-out metrics
var (
	// Subscribers tracks the number of sinks currently in the registry
	Subscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "newsdesk_subscribers",
			Help: "Number of live subscriber sinks in the registry",
		},
	)

	// EventsPublished counts publish calls by event name
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_events_published_total",
			Help: "Total events published by event name",
		},
		[]string{"event"},
	)

	// FramesDelivered counts frames successfully written to sinks by the broadcaster
	FramesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsdesk_frames_delivered_total",
			Help: "Total event frames written to subscriber sinks",
		},
	)

	// SinkWriteFailures counts broadcast writes that failed and pruned a sink
	SinkWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsdesk_sink_write_failures_total",
			Help: "Total broadcast writes that failed and removed the sink",
		},
	)

	// HeartbeatFailures counts keepalive writes that failed and closed the connection
	HeartbeatFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsdesk_heartbeat_failures_total",
			Help: "Total heartbeat writes that failed and closed the connection",
		},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts requests by method, route pattern and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// ExpiredArticlesDeleted counts articles removed by expiry cleanup
	ExpiredArticlesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsdesk_expired_articles_deleted_total",
			Help: "Total articles deleted by expiry cleanup",
		},
	)
)

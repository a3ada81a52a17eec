// Package metrics provides Prometheus instrumentation for the Nexus
// messaging service. It exposes counters for message and notification
// throughput and histograms for request latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesStored counts successfully persisted messages.
	MessagesStored = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nexus_messages_stored_total",
		Help: "Total number of messages persisted",
	})

	// MessagesRejected counts rejected sends, labeled by reason:
	// "validation", "not_participant", "not_found", "rate_limited".
	MessagesRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexus_messages_rejected_total",
		Help: "Total number of rejected message sends",
	}, []string{"reason"})

	// NotificationsDispatched counts notification fan-out results, labeled
	// by outcome: "stored" or "degraded".
	NotificationsDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nexus_notifications_dispatched_total",
		Help: "Total number of notification dispatch attempts",
	}, []string{"outcome"})

	// ConversationsCreated counts first contacts that created a new
	// conversation row.
	ConversationsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nexus_conversations_created_total",
		Help: "Total number of conversations created",
	})

	// RequestDuration records HTTP request latency in seconds per route.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nexus_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(
		MessagesStored,
		MessagesRejected,
		NotificationsDispatched,
		ConversationsCreated,
		RequestDuration,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

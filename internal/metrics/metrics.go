// Package metrics defines the Prometheus collectors for the moderation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion metrics
var (
	// IngestMessagesTotal counts classified chat messages by tier.
	IngestMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_messages_total",
			Help: "Total chat messages classified and broadcast, by tier",
		},
		[]string{"tier"},
	)

	// IngestErrorsTotal counts transient poll/classify failures.
	IngestErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_errors_total",
			Help: "Total transient ingestion errors (recovered with backoff)",
		},
	)

	// IngestWorkerRunning reports whether an ingestion worker is active (0 or 1).
	IngestWorkerRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_worker_running",
			Help: "Whether an ingestion worker is currently running (0 or 1)",
		},
	)
)

// Broadcast hub metrics
var (
	// HubSubscribers tracks the number of registered subscribers.
	HubSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_subscribers",
			Help: "Number of currently registered subscribers",
		},
	)

	// HubPublishedTotal counts events published to the hub.
	HubPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_published_events_total",
			Help: "Total events published to the broadcast hub",
		},
	)

	// HubDroppedTotal counts per-subscriber drops due to full mailboxes.
	HubDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_dropped_events_total",
			Help: "Total events dropped because a subscriber mailbox was full",
		},
	)
)

// WebSocket metrics
var (
	// WebSocketMessageSendDuration tracks how long websocket writes take.
	WebSocketMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "websocket_message_send_duration_seconds",
			Help:    "WebSocket message send duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	// WebSocketPingFailures counts failed keepalive pings.
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Total WebSocket ping failures (client likely disconnected)",
		},
	)
)

// Scorer client metrics
var (
	// ScorerRequestDuration tracks scoring service latency.
	ScorerRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scorer_request_duration_seconds",
			Help:    "Toxicity scoring request duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// ScorerRequestsTotal counts scoring requests by outcome.
	ScorerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scorer_requests_total",
			Help: "Total toxicity scoring requests by status (ok, error, rejected)",
		},
		[]string{"status"},
	)

	// ScorerBreakerState reports the circuit breaker state (0=closed, 1=half-open, 2=open).
	ScorerBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scorer_circuit_breaker_state",
			Help: "Scorer circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

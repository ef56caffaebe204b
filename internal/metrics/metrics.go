package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warelay_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warelay_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// Relay metrics
	WebhooksReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warelay_webhooks_received_total",
			Help: "Total provider callbacks received",
		},
	)

	MessagesRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warelay_messages_relayed_total",
			Help: "Total messages relayed end to end",
		},
	)

	RelayFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warelay_relay_failures_total",
			Help: "Total relay failures by pipeline stage",
		},
		[]string{"stage"}, // "validate", "chat" or "send"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warelay_rate_limited_total",
			Help: "Total requests rejected by the rate limiter",
		},
	)

	// Upstream latency metrics
	ChatRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warelay_chat_request_duration_seconds",
			Help:    "Chat API request latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
	)

	TwilioRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warelay_twilio_request_duration_seconds",
			Help:    "Twilio Messages API request latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)

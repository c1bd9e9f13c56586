package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeUpstreamErr  = "upstream_error"
	OutcomeClientGone   = "client_gone"
	OutcomeInvalid      = "invalid"
	ModeOnce            = "once"
	ModeStream          = "stream"
	ModeWebSocketStream = "websocket"
)

// ProviderUnknown labels requests rejected before a provider was resolved.
// Client-supplied names never become label values.
const ProviderUnknown = "unknown"

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatbot_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	// Relay metrics
	RelayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_relay_requests_total",
			Help: "Relayed chat requests by provider, mode and outcome",
		},
		[]string{"provider", "mode", "outcome"},
	)

	StreamChunks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_stream_chunks_total",
			Help: "Text fragments forwarded to clients",
		},
		[]string{"provider"},
	)
)

// RecordRelay counts one finished relay.
func RecordRelay(provider, mode, outcome string) {
	RelayRequests.WithLabelValues(provider, mode, outcome).Inc()
}

// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LLMCallDuration tracks LLM provider call duration, streaming or not.
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "LLM provider call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"provider", "mode", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"provider", "direction"},
	)

	// ProviderFallbacksTotal counts provider failures that moved the chain on.
	ProviderFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_provider_fallbacks_total",
			Help: "LLM provider failures that triggered a fallback",
		},
		[]string{"provider"},
	)

	// ProvidersExhaustedTotal counts requests answered with the apology text.
	ProvidersExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_providers_exhausted_total",
			Help: "Requests where every LLM provider failed",
		},
	)

	// SearchRequestsTotal tracks search provider calls.
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Search provider requests",
		},
		[]string{"provider", "status"},
	)

	// SearchCacheTotal tracks search cache lookups.
	SearchCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_cache_lookups_total",
			Help: "Search cache lookups by result",
		},
		[]string{"result"},
	)

	// ScrapeRequestsTotal tracks profile scrapes.
	ScrapeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_requests_total",
			Help: "Profile scrape requests",
		},
		[]string{"provider", "status"},
	)

	// InvestorsFoundTotal tracks investors surfaced by the search path.
	InvestorsFoundTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "investors_found_total",
			Help: "Investors found by the search path",
		},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// EventsDroppedTotal counts bus events dropped on full subscriber buffers.
	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_dropped_total",
			Help: "Events dropped because a subscriber buffer was full",
		},
		[]string{"type"},
	)

	// EventsForwardedTotal counts events published to NATS.
	EventsForwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_events_forwarded_total",
			Help: "Events forwarded to NATS JetStream",
		},
		[]string{"status"},
	)

	// ConversationsTotal tracks total conversations created.
	ConversationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_total",
			Help: "Total conversations created",
		},
	)

	// MessagesTotal tracks total messages stored.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages stored",
		},
		[]string{"role"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMCall records metrics for a single LLM provider call.
func RecordLLMCall(provider, mode, status string, duration float64, tokensIn, tokensOut int) {
	LLMCallDuration.WithLabelValues(provider, mode, status).Observe(duration)
	if tokensIn > 0 {
		LLMTokensTotal.WithLabelValues(provider, "in").Add(float64(tokensIn))
	}
	if tokensOut > 0 {
		LLMTokensTotal.WithLabelValues(provider, "out").Add(float64(tokensOut))
	}
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostfound_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lostfound_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	ClaimsFiled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lostfound_claims_filed_total",
			Help: "Total claims filed",
		},
	)

	ChatMessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostfound_chat_messages_posted_total",
			Help: "Total claim chat messages posted",
		},
		[]string{"role"}, // "user" or "admin"
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostfound_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	// Chat sync client metrics
	ChatRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostfound_chatsync_refreshes_total",
			Help: "Chat refreshes by outcome",
		},
		[]string{"result"}, // "ok", "error", "stale", "skipped"
	)

	ChatSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostfound_chatsync_sends_total",
			Help: "Chat sends by outcome",
		},
		[]string{"result"}, // "ok" or "error"
	)

	ChatFetchLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lostfound_chatsync_fetch_latency_seconds",
			Help:    "Chat message list fetch latency",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// Infrastructure metrics
	RedisLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lostfound_redis_latency_seconds",
			Help:    "Redis operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05},
		},
	)
)

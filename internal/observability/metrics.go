package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StoreQueryLatency records store latency by driver, operation and collection.
	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devhub_store_query_latency_seconds",
		Help:    "Document store query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"driver", "operation", "collection"})

	// StaleWrites counts optimistic-concurrency conflicts by collection.
	StaleWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_stale_writes_total",
		Help: "Total number of versioned writes rejected because the document changed",
	}, []string{"collection"})

	// AuthFailures counts rejected authentications by reason.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_auth_failures_total",
		Help: "Total number of rejected authentications by reason",
	}, []string{"reason"})

	// CacheResults counts cache lookups by keyspace and result.
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_cache_results_total",
		Help: "Cache lookups by keyspace and result (hit, miss)",
	}, []string{"keyspace", "result"})

	// FeedEventsPublished counts feed events by type and outcome.
	FeedEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_feed_events_published_total",
		Help: "Total number of feed events published by type and outcome",
	}, []string{"event_type", "outcome"})

	// WebSocketConnectionsTotal is the gauge of open feed connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "devhub_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records store latency when called (e.g. defer).
func TrackQuery(driver, operation, collection string) func() {
	start := time.Now()
	return func() {
		StoreQueryLatency.WithLabelValues(driver, operation, collection).Observe(time.Since(start).Seconds())
	}
}

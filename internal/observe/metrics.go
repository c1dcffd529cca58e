// Package observe exports the service's Prometheus instrumentation.
package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AJaySi/ALwrity-sub003/internal/cache"
)

var (
	// RefreshCycles counts started dashboard refresh cycles.
	RefreshCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_refresh_cycles_total",
		Help: "Number of dashboard refresh cycles started.",
	})

	// RefreshFailures counts refresh cycles that failed outright.
	RefreshFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_refresh_failures_total",
		Help: "Number of dashboard refresh cycles that failed.",
	})

	// RefreshDuration observes wall time of successful refresh cycles.
	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "telemetry_refresh_duration_seconds",
		Help:    "Duration of successful dashboard refresh cycles.",
		Buckets: prometheus.DefBuckets,
	})

	// FeedErrors counts failures of the individual upstream feeds.
	FeedErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_feed_errors_total",
		Help: "Upstream feed fetch failures by feed.",
	}, []string{"feed"})

	// ConnectedClients tracks currently connected websocket clients.
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "telemetry_ws_clients",
		Help: "Currently connected websocket dashboard clients.",
	})
)

// RegisterCacheStats exposes a cache's cumulative counters as gauges.
func RegisterCacheStats(c *cache.Cache) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "telemetry_cache_hits_total",
		Help: "Cumulative TTL cache hits.",
	}, func() float64 { return float64(c.Stats().Hits) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "telemetry_cache_misses_total",
		Help: "Cumulative TTL cache misses.",
	}, func() float64 { return float64(c.Stats().Misses) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "telemetry_cache_stale_serves_total",
		Help: "Cumulative stale values served after a failed refresh.",
	}, func() float64 { return float64(c.Stats().StaleServes) })
}

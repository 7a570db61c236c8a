// Package metrics exposes Prometheus instrumentation for the sync engine
// and the read API. Collectors are registered at init via promauto and
// served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRuns counts finished sync runs by terminal status.
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total number of finished sync runs by terminal status",
		},
		[]string{"status"}, // "concluido", "erro"
	)

	// SyncDuration observes wall-clock duration of full sync runs.
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_run_duration_seconds",
			Help:    "Duration of sync runs in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s .. ~8.5min
		},
	)

	// PagesFetched counts pages pulled from the remote API.
	PagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_pages_fetched_total",
			Help: "Total number of pages fetched from the Mapa Cultural API",
		},
	)

	// EventsWritten counts event rows applied, labelled by operation.
	EventsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_events_written_total",
			Help: "Total number of event rows written during sync",
		},
		[]string{"op"}, // "novo", "atualizado"
	)

	// CacheHits and CacheMisses track the Redis response cache of the
	// read endpoints.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_cache_hits_total",
			Help: "Total number of read-endpoint cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_cache_misses_total",
			Help: "Total number of read-endpoint cache misses",
		},
	)
)

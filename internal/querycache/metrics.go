package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "querycache_hits_total",
			Help: "Total number of cache point-reads that found an entry",
		},
	)

	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "querycache_misses_total",
			Help: "Total number of cache point-reads that found nothing",
		},
	)

	cacheWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "querycache_writes_total",
			Help: "Total number of cache writes",
		},
	)

	cacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "querycache_invalidations_total",
			Help: "Total number of entries marked stale by invalidation",
		},
	)

	cacheRefetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "querycache_refetches_total",
			Help: "Total number of background refetches started by invalidation",
		},
	)

	cacheRefetchesCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "querycache_refetches_cancelled_total",
			Help: "Total number of in-flight refetches cancelled",
		},
	)
)

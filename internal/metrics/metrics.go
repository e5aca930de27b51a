// Package metrics defines the engine's prometheus instruments. They are
// registered on the default registry and exposed by the dev server's
// /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCacheHits counts lookups answered by a completed task.
	RequestCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imageset_request_cache_hits_total",
		Help: "Number of generation requests answered by a completed in-memory task.",
	})

	// RequestCacheMisses counts lookups that started a new generation task.
	RequestCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imageset_request_cache_misses_total",
		Help: "Number of generation requests that started a new task.",
	})

	// RequestCacheShares counts lookups that joined an in-flight task.
	RequestCacheShares = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imageset_request_cache_shares_total",
		Help: "Number of generation requests de-duplicated onto an in-flight task.",
	})

	// DiskCacheHits counts variants served from the durable cache without
	// invoking the transform.
	DiskCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imageset_disk_cache_hits_total",
		Help: "Number of variants read from the on-disk cache.",
	})

	// GenerationDuration tracks how long producing one variant takes,
	// including encode and cache write.
	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "imageset_generation_duration_seconds",
		Help:    "Duration of variant generation in seconds.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	// PurgedFiles counts cache entries deleted by the reconciler.
	PurgedFiles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imageset_purged_files_total",
		Help: "Number of unreferenced cache files deleted during purge.",
	})
)

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits counts loads served without fetching.
	// Labels: cache, layer (memory, backend)
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notion_blog",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache loads served from a stored snapshot",
		},
		[]string{"cache", "layer"},
	)

	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notion_blog",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache loads that had to fetch",
		},
		[]string{"cache"},
	)

	fetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notion_blog",
			Subsystem: "cache",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed fetches",
		},
		[]string{"cache"},
	)
)

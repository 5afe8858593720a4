// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts source fetch attempts, by source and outcome
	// (ok, degraded).
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spota_source_fetches_total",
		Help: "Source fetch attempts by source name and outcome.",
	}, []string{"source", "outcome"})

	// EventsNormalized counts events produced by the normalization
	// pipeline, by source.
	EventsNormalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spota_events_normalized_total",
		Help: "Normalized events committed to the catalog by source name.",
	}, []string{"source"})

	// SearchesTotal counts live search requests by outcome (ok, empty).
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spota_searches_total",
		Help: "Live event searches by outcome.",
	}, []string{"outcome"})

	// ExtractionsTotal counts detail extraction attempts by outcome
	// (success, failed).
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spota_detail_extractions_total",
		Help: "Event detail page extraction attempts by outcome.",
	}, []string{"outcome"})

	// FetchDuration observes the wall time of source fetches.
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spota_source_fetch_duration_seconds",
		Help:    "Duration of source fetches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
)

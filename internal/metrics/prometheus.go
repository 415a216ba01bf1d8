// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glucosedash_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glucosedash_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ReadingsLoaded is the size of the last set fetched from the source.
	ReadingsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "glucosedash_readings_loaded",
			Help: "Number of readings returned by the last source fetch",
		},
	)

	SourceErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glucosedash_source_errors_total",
			Help: "Total number of failed reading source fetches",
		},
	)

	AnalysisLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "glucosedash_analysis_latency_seconds",
			Help:    "Time spent computing stats, patterns and recommendations",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	RecommendationsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glucosedash_recommendations_total",
			Help: "Total number of recommendations produced",
		},
		[]string{"type", "priority"},
	)

	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glucosedash_cache_operations_total",
			Help: "Total number of reading cache lookups by result",
		},
		[]string{"result"},
	)
)

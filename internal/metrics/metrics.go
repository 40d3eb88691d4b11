// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_catalog_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_catalog_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_catalog_rate_limit_rejections_total",
			Help: "Requests rejected by the mutation rate limiter",
		},
	)

	// Search Metrics
	RecipeSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_catalog_searches_total",
			Help: "Recipe searches by mode",
		},
		[]string{"mode"}, // "semantic", "fallback"
	)

	EmbeddingRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_catalog_embedding_request_duration_seconds",
			Help:    "Duration of embedding provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// Data generator Metrics
	GeneratorItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_catalog_generator_items_total",
			Help: "Items produced by the data generator",
		},
		[]string{"stage", "outcome"}, // stage: "recipe", "image"
	)
)

// ObserveEmbedding records the duration of one embedding call.
func ObserveEmbedding(start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	EmbeddingRequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

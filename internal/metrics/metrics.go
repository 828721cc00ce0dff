// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

// Package metrics defines the Prometheus collectors for the service: API
// request instrumentation, recommendation engine timings, catalog provider
// health, and circuit breaker state. All collectors are registered on the
// default registry via promauto and exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hades_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hades_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hades_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Recommendation engine metrics
	EngineTrainDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hades_engine_train_duration_seconds",
			Help:    "Model pair training duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"media_type"},
	)

	EngineRecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hades_engine_recommend_duration_seconds",
			Help:    "Recommendation cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"media_type"},
	)

	EnginePredictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hades_engine_predictions_total",
			Help: "Total number of blended predictions served",
		},
		[]string{"media_type"},
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hades_recommendations_served_total",
			Help: "Total number of recommended items returned",
		},
		[]string{"media_type"},
	)

	// Catalog provider metrics
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hades_catalog_requests_total",
			Help: "Total number of catalog provider requests by outcome",
		},
		[]string{"provider", "outcome"}, // outcome: success, failure, rejected
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hades_catalog_circuit_breaker_state",
			Help: "Catalog circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)

	// Store metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hades_store_operations_total",
			Help: "Total number of store operations by outcome",
		},
		[]string{"operation", "outcome"},
	)
)

// RecordAPIRequest records one finished API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

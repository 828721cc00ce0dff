// Hades - Personalized Media Recommendation Backend
// Copyright 2026 Hades Media
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hades-media/hades

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/test", "200"))
	RecordAPIRequest("GET", "/api/v1/test", "200", 50*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/test", "200"))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("gauge after inc = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("gauge after dec = %v, want %v", got, before)
	}
}

func TestEngineCollectorsAccept(t *testing.T) {
	// Label sets must line up with the declared cardinality.
	EngineTrainDuration.WithLabelValues("m").Observe(0.1)
	EngineRecommendDuration.WithLabelValues("g").Observe(0.2)
	EnginePredictions.WithLabelValues("t").Inc()
	RecommendationsServed.WithLabelValues("m").Add(10)
	CatalogRequests.WithLabelValues("tmdb", "success").Inc()
	CircuitBreakerState.WithLabelValues("rawg").Set(0)
	StoreOperations.WithLabelValues("upsert_rating", "success").Inc()
}

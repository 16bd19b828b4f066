// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationRequests.WithLabelValues("personalized"))
	RecordRecommendation("personalized", 50*time.Millisecond, 10)
	after := testutil.ToFloat64(RecommendationRequests.WithLabelValues("personalized"))

	if after != before+1 {
		t.Errorf("request counter = %v, want %v", after, before+1)
	}
}

func TestRecordFallback(t *testing.T) {
	before := testutil.ToFloat64(RecommendationFallbacks.WithLabelValues("insufficient_history"))
	RecordFallback("insufficient_history")
	after := testutil.ToFloat64(RecommendationFallbacks.WithLabelValues("insufficient_history"))

	if after != before+1 {
		t.Errorf("fallback counter = %v, want %v", after, before+1)
	}
}

func TestRecordCatalogRequest(t *testing.T) {
	before := testutil.ToFloat64(CatalogRequests.WithLabelValues("game_by_id", "success"))
	RecordCatalogRequest("game_by_id", "success", 10*time.Millisecond)
	after := testutil.ToFloat64(CatalogRequests.WithLabelValues("game_by_id", "success"))

	if after != before+1 {
		t.Errorf("catalog counter = %v, want %v", after, before+1)
	}
}

func TestRecordCacheHitMiss(t *testing.T) {
	hitsBefore := testutil.ToFloat64(CacheHits.WithLabelValues("catalog"))
	missesBefore := testutil.ToFloat64(CacheMisses.WithLabelValues("catalog"))

	RecordCacheHit("catalog")
	RecordCacheMiss("catalog")

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("catalog")); got != hitsBefore+1 {
		t.Errorf("hit counter = %v, want %v", got, hitsBefore+1)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("catalog")); got != missesBefore+1 {
		t.Errorf("miss counter = %v, want %v", got, missesBefore+1)
	}
}

func TestRecordDBQuery(t *testing.T) {
	errsBefore := testutil.ToFloat64(DBQueryErrors.WithLabelValues("upsert"))

	RecordDBQuery("upsert", time.Millisecond, nil)
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("upsert")); got != errsBefore {
		t.Errorf("error counter moved on success: %v", got)
	}

	RecordDBQuery("upsert", time.Millisecond, errors.New("locked"))
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("upsert")); got != errsBefore+1 {
		t.Errorf("error counter = %v, want %v", got, errsBefore+1)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/games", "200"))
	RecordAPIRequest("GET", "/api/v1/games", 200, 5*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/games", "200"))

	if after != before+1 {
		t.Errorf("API counter = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+1 {
		t.Errorf("active gauge = %v, want %v", got, base+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("active gauge = %v, want %v", got, base)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	SetCircuitBreakerState("catalog", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("catalog")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}

	before := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("catalog", "closed", "open"))
	RecordCircuitBreakerTransition("catalog", "closed", "open")
	after := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("catalog", "closed", "open"))

	if after != before+1 {
		t.Errorf("transition counter = %v, want %v", after, before+1)
	}
}

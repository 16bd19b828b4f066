// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package catalog

import (
	"context"
	"errors"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/questlog/questlog/internal/recommend"
)

func TestBreakerClientPassthrough(t *testing.T) {
	upstream := &countingService{}
	breaker := NewBreakerClient(upstream)

	game, err := breaker.GameByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("GameByID() error = %v", err)
	}
	if game.ID != 42 {
		t.Errorf("game.ID = %d, want 42", game.ID)
	}

	games, err := breaker.PopularGames(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("PopularGames() error = %v", err)
	}
	if len(games) != 1 {
		t.Errorf("got %d games, want 1", len(games))
	}

	if breaker.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", breaker.State())
	}
}

func TestBreakerClientOpensOnFailures(t *testing.T) {
	upstream := &countingService{err: errors.New("connection refused")}
	breaker := NewBreakerClient(upstream)

	// Drive enough failures past the minimum request count to trip.
	for i := 0; i < 12; i++ {
		_, _ = breaker.PopularGames(context.Background(), 1, 10)
	}

	if breaker.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open after sustained failures", breaker.State())
	}

	callsBefore := upstream.popularCalls
	_, err := breaker.PopularGames(context.Background(), 1, 10)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
	if upstream.popularCalls != callsBefore {
		t.Error("open breaker must not call the upstream")
	}
}

func TestBreakerClientNotFoundExempt(t *testing.T) {
	upstream := &countingService{err: recommend.ErrGameNotFound}
	breaker := NewBreakerClient(upstream)

	// Not-found responses are valid answers and must never trip the breaker.
	for i := 0; i < 20; i++ {
		_, err := breaker.GameByID(context.Background(), int64(i))
		if !errors.Is(err, recommend.ErrGameNotFound) {
			t.Fatalf("error = %v, want ErrGameNotFound", err)
		}
	}

	if breaker.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed despite not-found responses", breaker.State())
	}
}

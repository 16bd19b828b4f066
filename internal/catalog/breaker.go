// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package catalog

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/questlog/questlog/internal/logging"
	"github.com/questlog/questlog/internal/metrics"
	"github.com/questlog/questlog/internal/recommend"
)

// BreakerClient wraps a catalog Service with a circuit breaker so a failing
// upstream degrades to the recommendation engine's popularity fallback
// instead of tying up request goroutines on a dead connection.
//
// A not-found result is a valid answer, not an upstream failure; it never
// counts against the breaker.
type BreakerClient struct {
	service Service
	cb      *gobreaker.CircuitBreaker[any]
	name    string
}

// NewBreakerClient wraps the given service with circuit breaker protection.
// Breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
func NewBreakerClient(service Service) *BreakerClient {
	cbName := "catalog"

	metrics.SetCircuitBreakerState(cbName, 0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		// Missing games are an expected per-item condition.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, recommend.ErrGameNotFound)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.SetCircuitBreakerState(name, stateToFloat(to))
			metrics.RecordCircuitBreakerTransition(name, fromStr, toStr)
		},
	})

	return &BreakerClient{
		service: service,
		cb:      cb,
		name:    cbName,
	}
}

// execute wraps a catalog call with circuit breaker protection.
func (b *BreakerClient) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else if !errors.Is(err, recommend.ErrGameNotFound) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// GameByID returns full detail for a single game.
func (b *BreakerClient) GameByID(ctx context.Context, id int64) (*recommend.Game, error) {
	result, err := b.execute(func() (any, error) {
		return b.service.GameByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*recommend.Game), nil
}

// GamesByGenre returns games carrying the given genre tag.
func (b *BreakerClient) GamesByGenre(ctx context.Context, genre string, page, pageSize int) ([]recommend.Game, error) {
	result, err := b.execute(func() (any, error) {
		return b.service.GamesByGenre(ctx, genre, page, pageSize)
	})
	if err != nil {
		return nil, err
	}
	return result.([]recommend.Game), nil
}

// PopularGames returns games ordered by descending catalog rating.
func (b *BreakerClient) PopularGames(ctx context.Context, page, pageSize int) ([]recommend.Game, error) {
	result, err := b.execute(func() (any, error) {
		return b.service.PopularGames(ctx, page, pageSize)
	})
	if err != nil {
		return nil, err
	}
	return result.([]recommend.Game), nil
}

// SearchGames performs a free-text search over the catalog.
func (b *BreakerClient) SearchGames(ctx context.Context, query string, limit int) ([]recommend.Game, error) {
	result, err := b.execute(func() (any, error) {
		return b.service.SearchGames(ctx, query, limit)
	})
	if err != nil {
		return nil, err
	}
	return result.([]recommend.Game), nil
}

// State returns the current breaker state.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

// stateToString converts a gobreaker state to its metric label.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// stateToFloat converts a gobreaker state to its gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

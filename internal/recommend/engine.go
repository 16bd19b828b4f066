// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package recommend

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// popularReason is the recommendation reason on the popularity path.
const popularReason = "Popular among players"

// Engine is the per-request recommendation pipeline. It holds no state
// between requests beyond counters and is safe for concurrent use.
type Engine struct {
	config  *Config
	logger  zerolog.Logger
	catalog CatalogService
	library LibraryStore

	requestCount      atomic.Int64
	personalizedCount atomic.Int64
	fallbackCount     atomic.Int64
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// SetProviders sets the catalog and library collaborators.
func (e *Engine) SetProviders(catalog CatalogService, library LibraryStore) {
	e.catalog = catalog
	e.library = library
}

// Recommend generates an ordered list of up to req.Count candidates for a
// user. It never returns an error: a library below the minimum size, a
// catalog outage, or any other failure inside the personalized pipeline is
// logged and absorbed into the popularity fallback, and a failing fallback
// yields an empty list. The caller always receives a valid response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) *Response {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepareRequest(req)
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, e.config.RequestTimeout)
	defer cancel()

	if e.catalog == nil || e.library == nil {
		logger.Error().Msg("engine providers not set")
		return e.buildResponse(req, nil, pipelineState{fallback: true, reason: "engine not wired"}, start)
	}

	entries, err := e.library.UserLibrary(ctx, req.UserID)
	if err != nil {
		logger.Error().Err(err).Str("stage", "library").Msg("library load failed, falling back to popular games")
		return e.fallbackResponse(ctx, req, pipelineState{fallback: true, reason: "library unavailable"}, start, logger)
	}

	state := pipelineState{librarySize: len(entries)}

	if len(entries) < e.config.MinLibrarySize {
		logger.Debug().Int("library_size", len(entries)).Msg("insufficient history, serving popular games")
		state.fallback = true
		state.reason = ErrInsufficientHistory.Error()
		return e.fallbackResponse(ctx, req, state, start, logger)
	}

	candidates, err := e.personalize(ctx, entries, req.Count)
	if err != nil {
		logger.Error().Err(err).Str("stage", "personalize").Msg("personalized pipeline failed, falling back to popular games")
		state.fallback = true
		state.reason = err.Error()
		return e.fallbackResponse(ctx, req, state, start, logger)
	}

	e.personalizedCount.Add(1)
	state.candidateCount = len(candidates)
	resp := e.buildResponse(req, candidates, state, start)

	logger.Debug().
		Int("library_size", state.librarySize).
		Int("returned", len(candidates)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("personalized recommendations complete")

	return resp
}

// pipelineState carries per-request diagnostics into the response metadata.
type pipelineState struct {
	librarySize    int
	candidateCount int
	fallback       bool
	reason         string
}

// personalize runs the full preference-driven pipeline and returns the final
// filtered candidate list. Errors are returned, never handled here; the
// orchestrator decides the fallback.
func (e *Engine) personalize(ctx context.Context, entries []LibraryEntry, count int) ([]Candidate, error) {
	profile := analyzePreferences(entries)

	candidates, err := e.generateCandidates(ctx, entries, profile)
	if err != nil {
		return nil, err
	}

	sortCandidates(candidates)
	candidates = dedupeCandidates(candidates)
	return diversityFilter(candidates, count, e.config.GenreOverlapLimit), nil
}

// popular returns the catalog's top-rated games as candidates.
func (e *Engine) popular(ctx context.Context, count int) ([]Candidate, error) {
	games, err := e.catalog.PopularGames(ctx, 1, count)
	if err != nil {
		return nil, fmt.Errorf("popular games: %w", err)
	}

	candidates := make([]Candidate, 0, len(games))
	for i := range games {
		score := games[i].Rating / 100.0
		if score > 1.0 {
			score = 1.0
		}
		candidates = append(candidates, Candidate{
			Game:   games[i],
			Reason: popularReason,
			Score:  score,
		})
	}
	return candidates, nil
}

// fallbackResponse serves the popularity path. If even that fails, the
// caller receives an empty list rather than an error.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) fallbackResponse(ctx context.Context, req Request, state pipelineState, start time.Time, logger zerolog.Logger) *Response {
	e.fallbackCount.Add(1)

	candidates, err := e.popular(ctx, req.Count)
	if err != nil {
		logger.Error().Err(err).Str("stage", "fallback").Msg("popularity fallback failed, returning empty list")
		candidates = []Candidate{}
	}
	state.candidateCount = len(candidates)
	return e.buildResponse(req, candidates, state, start)
}

// buildResponse assembles the response envelope.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponse(req Request, candidates []Candidate, state pipelineState, start time.Time) *Response {
	if candidates == nil {
		candidates = []Candidate{}
	}

	strategy := StrategyPersonalized
	if state.fallback {
		strategy = StrategyPopular
	}

	return &Response{
		Candidates: candidates,
		Metadata: ResponseMetadata{
			RequestID:      req.RequestID,
			UserID:         req.UserID,
			Strategy:       strategy.String(),
			Fallback:       state.fallback,
			FallbackReason: state.reason,
			LibrarySize:    state.librarySize,
			CandidateCount: state.candidateCount,
			LatencyMS:      time.Since(start).Milliseconds(),
			Timestamp:      time.Now(),
		},
	}
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Count <= 0 {
		req.Count = e.config.DefaultCount
	}
	if req.Count > e.config.MaxCount {
		req.Count = e.config.MaxCount
	}
	return req
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// GetMetrics returns the current engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount:      e.requestCount.Load(),
		PersonalizedCount: e.personalizedCount.Load(),
		FallbackCount:     e.fallbackCount.Load(),
	}
}

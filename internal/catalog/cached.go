// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/questlog/questlog/internal/cache"
	"github.com/questlog/questlog/internal/metrics"
	"github.com/questlog/questlog/internal/recommend"
)

// cacheType is the metric label for the catalog cache.
const cacheType = "catalog"

// CacheConfig holds the catalog cache settings.
type CacheConfig struct {
	// Capacity is the maximum number of cached responses.
	// Default: 2048.
	Capacity int

	// TTL is the lifetime of a cached response.
	// Default: 15m.
	TTL time.Duration
}

// CachedService decorates a catalog Service with an in-memory LRU cache.
// Only successful responses are cached; errors, including not-found, always
// hit the upstream so transient failures are not pinned for a full TTL.
type CachedService struct {
	service Service
	cache   *cache.LRU
}

// NewCachedService wraps the given service with response caching.
func NewCachedService(service Service, cfg CacheConfig) *CachedService {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 2048
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Minute
	}

	return &CachedService{
		service: service,
		cache:   cache.NewLRU(cfg.Capacity, cfg.TTL),
	}
}

// GameByID returns full detail for a single game, from cache when possible.
func (s *CachedService) GameByID(ctx context.Context, id int64) (*recommend.Game, error) {
	key := fmt.Sprintf("game:%d", id)
	if v, ok := s.cache.Get(key); ok {
		metrics.RecordCacheHit(cacheType)
		return v.(*recommend.Game), nil
	}
	metrics.RecordCacheMiss(cacheType)

	game, err := s.service.GameByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, game)
	return game, nil
}

// GamesByGenre returns games carrying the given genre tag, from cache when
// possible.
func (s *CachedService) GamesByGenre(ctx context.Context, genre string, page, pageSize int) ([]recommend.Game, error) {
	key := fmt.Sprintf("genre:%s:%d:%d", genre, page, pageSize)
	if v, ok := s.cache.Get(key); ok {
		metrics.RecordCacheHit(cacheType)
		return v.([]recommend.Game), nil
	}
	metrics.RecordCacheMiss(cacheType)

	games, err := s.service.GamesByGenre(ctx, genre, page, pageSize)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, games)
	return games, nil
}

// PopularGames returns games ordered by descending rating, from cache when
// possible.
func (s *CachedService) PopularGames(ctx context.Context, page, pageSize int) ([]recommend.Game, error) {
	key := fmt.Sprintf("popular:%d:%d", page, pageSize)
	if v, ok := s.cache.Get(key); ok {
		metrics.RecordCacheHit(cacheType)
		return v.([]recommend.Game), nil
	}
	metrics.RecordCacheMiss(cacheType)

	games, err := s.service.PopularGames(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, games)
	return games, nil
}

// SearchGames performs a free-text search over the catalog, from cache when
// possible.
func (s *CachedService) SearchGames(ctx context.Context, query string, limit int) ([]recommend.Game, error) {
	key := fmt.Sprintf("search:%s:%d", query, limit)
	if v, ok := s.cache.Get(key); ok {
		metrics.RecordCacheHit(cacheType)
		return v.([]recommend.Game), nil
	}
	metrics.RecordCacheMiss(cacheType)

	games, err := s.service.SearchGames(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, games)
	return games, nil
}

// CacheStats returns hit/miss counters and the current cache size.
func (s *CachedService) CacheStats() (hits, misses int64, size int) {
	return s.cache.Stats()
}

// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

// Package config loads and validates the service configuration.
//
// Configuration is layered: struct defaults, then an optional YAML file,
// then environment variables, each layer overriding the previous one.
package config

import (
	"fmt"
	"time"

	"github.com/questlog/questlog/internal/recommend"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Database  DatabaseConfig  `koanf:"database"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// CatalogConfig holds the upstream game catalog connection settings.
type CatalogConfig struct {
	URL               string        `koanf:"url"`
	ClientID          string        `koanf:"client_id"`
	AccessToken       string        `koanf:"access_token"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	MinRatingCount    int           `koanf:"min_rating_count"`
	CacheCapacity     int           `koanf:"cache_capacity"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
}

// DatabaseConfig holds the library database settings.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// APIConfig holds API surface settings. CORS origins default to empty,
// so cross-origin access requires explicit configuration.
type APIConfig struct {
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	RateLimitReqs      int           `koanf:"rate_limit_reqs"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled  bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds the recommendation engine settings.
type RecommendConfig struct {
	MinLibrarySize        int           `koanf:"min_library_size"`
	DefaultCount          int           `koanf:"default_count"`
	MaxCount              int           `koanf:"max_count"`
	MaxFavorites          int           `koanf:"max_favorites"`
	MaxSimilarPerFavorite int           `koanf:"max_similar_per_favorite"`
	MaxGenres             int           `koanf:"max_genres"`
	MaxGamesPerGenre      int           `koanf:"max_games_per_genre"`
	GenreOverlapLimit     int           `koanf:"genre_overlap_limit"`
	RatingWeight          float64       `koanf:"rating_weight"`
	GenreWeight           float64       `koanf:"genre_weight"`
	ThemeWeight           float64       `koanf:"theme_weight"`
	RequestTimeout        time.Duration `koanf:"request_timeout"`
}

// EngineConfig converts the recommend section to the engine's config type.
func (r *RecommendConfig) EngineConfig() *recommend.Config {
	return &recommend.Config{
		MinLibrarySize:        r.MinLibrarySize,
		DefaultCount:          r.DefaultCount,
		MaxCount:              r.MaxCount,
		MaxFavorites:          r.MaxFavorites,
		MaxSimilarPerFavorite: r.MaxSimilarPerFavorite,
		MaxGenres:             r.MaxGenres,
		MaxGamesPerGenre:      r.MaxGamesPerGenre,
		GenreOverlapLimit:     r.GenreOverlapLimit,
		Weights: recommend.ScoreWeights{
			Rating: r.RatingWeight,
			Genre:  r.GenreWeight,
			Theme:  r.ThemeWeight,
		},
		RequestTimeout: r.RequestTimeout,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Catalog.URL == "" {
		return fmt.Errorf("catalog.url is required")
	}
	if c.Catalog.ClientID == "" {
		return fmt.Errorf("catalog.client_id is required")
	}
	if c.Catalog.AccessToken == "" {
		return fmt.Errorf("catalog.access_token is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if !c.API.RateLimitDisabled {
		if c.API.RateLimitReqs < 1 {
			return fmt.Errorf("api.rate_limit_reqs must be positive, got %d", c.API.RateLimitReqs)
		}
		if c.API.RateLimitWindow <= 0 {
			return fmt.Errorf("api.rate_limit_window must be positive, got %v", c.API.RateLimitWindow)
		}
	}
	if err := c.Recommend.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

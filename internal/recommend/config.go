// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// MinLibrarySize is the library size below which the engine skips
	// personalization and serves popular games.
	// Default: 3.
	MinLibrarySize int `json:"min_library_size"`

	// DefaultCount is the number of recommendations returned when the
	// request does not specify one.
	// Default: 10.
	DefaultCount int `json:"default_count"`

	// MaxCount is the maximum allowed result count.
	// Default: 50.
	MaxCount int `json:"max_count"`

	// MaxFavorites is how many favorite entries seed similarity search.
	// Default: 3.
	MaxFavorites int `json:"max_favorites"`

	// MaxSimilarPerFavorite is how many similar titles are taken per
	// favorite.
	// Default: 3.
	MaxSimilarPerFavorite int `json:"max_similar_per_favorite"`

	// MaxGenres is how many top-weighted genres seed the genre branch.
	// Default: 3.
	MaxGenres int `json:"max_genres"`

	// MaxGamesPerGenre is how many titles are fetched per genre.
	// Default: 3.
	MaxGamesPerGenre int `json:"max_games_per_genre"`

	// GenreOverlapLimit is the maximum number of already-represented
	// genres a candidate may carry and still be accepted by the diversity
	// filter.
	// Default: 2.
	GenreOverlapLimit int `json:"genre_overlap_limit"`

	// Weights defines the relative contribution of each scoring signal.
	// Weights are normalized at runtime, so they don't need to sum to 1.0.
	Weights ScoreWeights `json:"weights"`

	// RequestTimeout bounds a whole recommendation request, including all
	// catalog calls. On expiry the engine falls back to popularity.
	// Default: 10s.
	RequestTimeout time.Duration `json:"request_timeout"`
}

// ScoreWeights defines the relative contribution of each scoring signal.
type ScoreWeights struct {
	// Rating is the weight of the catalog rating.
	Rating float64 `json:"rating"`

	// Genre is the weight of the genre preference match.
	Genre float64 `json:"genre"`

	// Theme is the weight of the theme preference match.
	Theme float64 `json:"theme"`
}

// Normalize returns a copy with weights normalized to sum to 1.0.
// All-zero weights fall back to the defaults.
func (w ScoreWeights) Normalize() ScoreWeights {
	sum := w.Rating + w.Genre + w.Theme
	if sum == 0 {
		return ScoreWeights{Rating: 0.35, Genre: 0.40, Theme: 0.25}
	}
	return ScoreWeights{
		Rating: w.Rating / sum,
		Genre:  w.Genre / sum,
		Theme:  w.Theme / sum,
	}
}

// DefaultConfig returns a Config with production defaults matching the
// documented recommendation behavior.
func DefaultConfig() *Config {
	return &Config{
		MinLibrarySize:        3,
		DefaultCount:          10,
		MaxCount:              50,
		MaxFavorites:          3,
		MaxSimilarPerFavorite: 3,
		MaxGenres:             3,
		MaxGamesPerGenre:      3,
		GenreOverlapLimit:     2,
		Weights: ScoreWeights{
			Rating: 0.35,
			Genre:  0.40,
			Theme:  0.25,
		},
		RequestTimeout: 10 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MinLibrarySize < 1 {
		return fmt.Errorf("min_library_size must be positive, got %d", c.MinLibrarySize)
	}
	if c.DefaultCount < 1 {
		return fmt.Errorf("default_count must be positive, got %d", c.DefaultCount)
	}
	if c.MaxCount < c.DefaultCount {
		return fmt.Errorf("max_count must be >= default_count, got %d < %d", c.MaxCount, c.DefaultCount)
	}
	if c.MaxFavorites < 1 {
		return fmt.Errorf("max_favorites must be positive, got %d", c.MaxFavorites)
	}
	if c.MaxSimilarPerFavorite < 1 {
		return fmt.Errorf("max_similar_per_favorite must be positive, got %d", c.MaxSimilarPerFavorite)
	}
	if c.MaxGenres < 1 {
		return fmt.Errorf("max_genres must be positive, got %d", c.MaxGenres)
	}
	if c.MaxGamesPerGenre < 1 {
		return fmt.Errorf("max_games_per_genre must be positive, got %d", c.MaxGamesPerGenre)
	}
	if c.GenreOverlapLimit < 0 {
		return fmt.Errorf("genre_overlap_limit must be non-negative, got %d", c.GenreOverlapLimit)
	}
	if c.Weights.Rating < 0 || c.Weights.Genre < 0 || c.Weights.Theme < 0 {
		return fmt.Errorf("score weights must be non-negative, got %+v", c.Weights)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All fields are value types.
	cp := *c
	return &cp
}

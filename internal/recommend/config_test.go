// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package recommend

import (
	"math"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero min library size", func(c *Config) { c.MinLibrarySize = 0 }},
		{"zero default count", func(c *Config) { c.DefaultCount = 0 }},
		{"max below default", func(c *Config) { c.MaxCount = 5 }},
		{"zero max favorites", func(c *Config) { c.MaxFavorites = 0 }},
		{"zero similar per favorite", func(c *Config) { c.MaxSimilarPerFavorite = 0 }},
		{"zero max genres", func(c *Config) { c.MaxGenres = 0 }},
		{"zero games per genre", func(c *Config) { c.MaxGamesPerGenre = 0 }},
		{"negative overlap limit", func(c *Config) { c.GenreOverlapLimit = -1 }},
		{"negative weight", func(c *Config) { c.Weights.Genre = -0.1 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestScoreWeightsNormalize(t *testing.T) {
	t.Run("already normalized is unchanged", func(t *testing.T) {
		w := ScoreWeights{Rating: 0.35, Genre: 0.40, Theme: 0.25}.Normalize()
		if math.Abs(w.Rating-0.35) > 1e-9 || math.Abs(w.Genre-0.40) > 1e-9 || math.Abs(w.Theme-0.25) > 1e-9 {
			t.Errorf("Normalize() = %+v, want unchanged", w)
		}
	})

	t.Run("scales to unit sum", func(t *testing.T) {
		w := ScoreWeights{Rating: 7, Genre: 8, Theme: 5}.Normalize()
		sum := w.Rating + w.Genre + w.Theme
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("normalized weights sum to %v, want 1.0", sum)
		}
		if math.Abs(w.Rating-0.35) > 1e-9 {
			t.Errorf("Rating = %v, want 0.35", w.Rating)
		}
	})

	t.Run("all-zero falls back to defaults", func(t *testing.T) {
		w := ScoreWeights{}.Normalize()
		if w.Rating != 0.35 || w.Genre != 0.40 || w.Theme != 0.25 {
			t.Errorf("Normalize() = %+v, want defaults", w)
		}
	})
}

func TestConfigClone(t *testing.T) {
	original := DefaultConfig()
	clone := original.Clone()

	clone.DefaultCount = 99
	clone.Weights.Genre = 0.9

	if original.DefaultCount != 10 {
		t.Errorf("mutating the clone changed the original DefaultCount to %d", original.DefaultCount)
	}
	if original.Weights.Genre != 0.40 {
		t.Errorf("mutating the clone changed the original Genre weight to %v", original.Weights.Genre)
	}
}

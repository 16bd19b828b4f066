// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// branchResult holds the outcome of a single candidate-generation branch.
type branchResult struct {
	candidates []Candidate
	err        error
}

// generateCandidates produces scored candidates from both sources: titles
// similar to the user's favorite seeds, and top titles in the user's
// strongest genres. Every branch is independent, so they fan out
// concurrently and are joined before aggregation. A transport failure in any
// branch fails the whole generation; a missing game is skipped per item.
func (e *Engine) generateCandidates(ctx context.Context, entries []LibraryEntry, profile PreferenceProfile) ([]Candidate, error) {
	owned := ownedIDs(entries)
	favorites := selectFavorites(entries, e.config.MaxFavorites)
	genres := topGenres(profile.Genres, e.config.MaxGenres)
	weights := e.config.Weights.Normalize()

	results := make([]branchResult, len(favorites)+len(genres))
	var wg sync.WaitGroup

	for i := range favorites {
		wg.Add(1)
		go func(idx int, seed LibraryEntry) {
			defer wg.Done()
			results[idx] = e.similarBranch(ctx, seed, owned, profile, weights)
		}(i, favorites[i])
	}

	for i, genre := range genres {
		wg.Add(1)
		go func(idx int, genre string) {
			defer wg.Done()
			results[idx] = e.genreBranch(ctx, genre, owned, profile, weights)
		}(len(favorites)+i, genre)
	}

	wg.Wait()

	var candidates []Candidate
	for i := range results {
		if results[i].err != nil {
			return nil, results[i].err
		}
		candidates = append(candidates, results[i].candidates...)
	}
	return candidates, nil
}

// similarBranch emits candidates from the similar-games list of a single
// favorite seed. The per-favorite cap applies to the head of the catalog's
// similar list before the ownership filter, so owned titles consume slots.
func (e *Engine) similarBranch(ctx context.Context, seed LibraryEntry, owned map[int64]struct{}, profile PreferenceProfile, weights ScoreWeights) branchResult {
	source, err := e.catalog.GameByID(ctx, seed.GameID)
	if errors.Is(err, ErrGameNotFound) {
		// The library references a title the catalog no longer has.
		e.logger.Debug().Int64("game_id", seed.GameID).Msg("favorite missing from catalog, skipping")
		return branchResult{}
	}
	if err != nil {
		return branchResult{err: fmt.Errorf("similar branch, seed %d: %w", seed.GameID, err)}
	}

	similar := source.SimilarGames
	if len(similar) > e.config.MaxSimilarPerFavorite {
		similar = similar[:e.config.MaxSimilarPerFavorite]
	}

	var candidates []Candidate
	for _, summary := range similar {
		if _, has := owned[summary.ID]; has {
			continue
		}

		game, err := e.catalog.GameByID(ctx, summary.ID)
		if errors.Is(err, ErrGameNotFound) {
			e.logger.Debug().Int64("game_id", summary.ID).Msg("similar game missing from catalog, skipping")
			continue
		}
		if err != nil {
			return branchResult{err: fmt.Errorf("similar branch, game %d: %w", summary.ID, err)}
		}

		candidates = append(candidates, Candidate{
			Game:   *game,
			Reason: fmt.Sprintf("Because you enjoyed %s", source.Name),
			Score:  scoreGame(game, profile, weights),
		})
	}
	return branchResult{candidates: candidates}
}

// genreBranch emits candidates from the catalog's top titles for a single
// preferred genre.
func (e *Engine) genreBranch(ctx context.Context, genre string, owned map[int64]struct{}, profile PreferenceProfile, weights ScoreWeights) branchResult {
	games, err := e.catalog.GamesByGenre(ctx, genre, 1, e.config.MaxGamesPerGenre)
	if err != nil {
		return branchResult{err: fmt.Errorf("genre branch %q: %w", genre, err)}
	}

	var candidates []Candidate
	for i := range games {
		if _, has := owned[games[i].ID]; has {
			continue
		}
		candidates = append(candidates, Candidate{
			Game:   games[i],
			Reason: fmt.Sprintf("Based on your interest in %s games", genre),
			Score:  scoreGame(&games[i], profile, weights),
		})
	}
	return branchResult{candidates: candidates}
}

// ownedIDs builds the exclusion set of game IDs already in the library.
func ownedIDs(entries []LibraryEntry) map[int64]struct{} {
	owned := make(map[int64]struct{}, len(entries))
	for i := range entries {
		owned[entries[i].GameID] = struct{}{}
	}
	return owned
}

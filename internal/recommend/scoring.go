// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package recommend

// scoreGame computes the blended recommendation score for a game against a
// preference profile:
//
//	score = rating/100 * w.Rating + genreMatch * w.Genre + themeMatch * w.Theme
//
// where genreMatch is the arithmetic mean of the profile weights of the
// game's genres that appear in the profile (0 when none do), and themeMatch
// is computed identically against the theme vector. The result is clamped to
// 1.0; with normalized weights the sum cannot exceed it, the clamp is an
// explicit safety bound.
func scoreGame(game *Game, profile PreferenceProfile, weights ScoreWeights) float64 {
	ratingScore := game.Rating / 100.0
	genreScore := tagMatchScore(game.Genres, profile.Genres)
	themeScore := tagMatchScore(game.Themes, profile.Themes)

	score := ratingScore*weights.Rating + genreScore*weights.Genre + themeScore*weights.Theme
	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// tagMatchScore averages the profile weights of the tags that the profile
// knows about. Tags absent from the profile are excluded from the mean
// rather than counted as zero.
func tagMatchScore(tags []string, prefs map[string]float64) float64 {
	var sum float64
	matched := 0
	for _, tag := range tags {
		if weight, ok := prefs[tag]; ok {
			sum += weight
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	return sum / float64(matched)
}

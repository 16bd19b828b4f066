// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package recommend

import "sort"

// favoriteBoost multiplies the weight of entries flagged as favorites.
const favoriteBoost = 1.5

// strongRatingThreshold qualifies an unflagged entry as a favorite seed.
const strongRatingThreshold = 8

// analyzePreferences derives a normalized preference profile from a user's
// library. Accumulation and normalization are two distinct passes: each
// entry's weight is added to every genre and theme tag on its game, then each
// vector is divided by its own maximum so the top tag ends at exactly 1.0.
// Entries without resolved catalog metadata contribute nothing.
func analyzePreferences(entries []LibraryEntry) PreferenceProfile {
	genres := make(map[string]float64)
	themes := make(map[string]float64)

	for i := range entries {
		entry := &entries[i]
		if entry.Game == nil {
			continue
		}

		weight := entryWeight(entry)
		for _, genre := range entry.Game.Genres {
			genres[genre] += weight
		}
		for _, theme := range entry.Game.Themes {
			themes[theme] += weight
		}
	}

	normalizeByMax(genres)
	normalizeByMax(themes)

	return PreferenceProfile{Genres: genres, Themes: themes}
}

// entryWeight computes the preference weight a single library entry carries.
// The favorite boost and the rating multiplier apply independently; an
// unrated entry keeps the rating multiplier at 1.0.
func entryWeight(entry *LibraryEntry) float64 {
	weight := 1.0
	if entry.Favorite {
		weight *= favoriteBoost
	}
	if entry.UserRating != nil {
		weight *= float64(*entry.UserRating) / 10.0
	}
	return weight
}

// normalizeByMax divides every value by the map's maximum so the strongest
// tag has weight 1.0. An empty map is left untouched.
func normalizeByMax(m map[string]float64) {
	var maxVal float64
	for _, v := range m {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= 0 {
		return
	}
	for k := range m {
		m[k] /= maxVal
	}
}

// selectFavorites picks up to limit entries to seed similarity search:
// favorites or entries rated at least strongRatingThreshold, ordered by
// rating descending with favorites winning ties. Game ID is the final
// tie-break so the selection is deterministic.
func selectFavorites(entries []LibraryEntry, limit int) []LibraryEntry {
	selected := make([]LibraryEntry, 0, len(entries))
	for i := range entries {
		if entries[i].Favorite || entries[i].ratingOrZero() >= strongRatingThreshold {
			selected = append(selected, entries[i])
		}
	}

	sort.Slice(selected, func(i, j int) bool {
		ri, rj := selected[i].ratingOrZero(), selected[j].ratingOrZero()
		if ri != rj {
			return ri > rj
		}
		if selected[i].Favorite != selected[j].Favorite {
			return selected[i].Favorite
		}
		return selected[i].GameID < selected[j].GameID
	})

	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

// topGenres returns up to limit genre names ordered by descending preference
// weight, breaking ties by name for determinism.
func topGenres(prefs map[string]float64, limit int) []string {
	names := make([]string, 0, len(prefs))
	for name := range prefs {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		wi, wj := prefs[names[i]], prefs[names[j]]
		if wi != wj {
			return wi > wj
		}
		return names[i] < names[j]
	})

	if len(names) > limit {
		names = names[:limit]
	}
	return names
}

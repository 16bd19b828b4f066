// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package recommend

import "sort"

// sortCandidates orders candidates by score descending, breaking ties by
// game ID ascending and then by reason so repeated requests over unchanged
// data produce identical output. The reason tie-break matters for a title
// reached through both generation branches: its two instances share a score
// and an ID, and sort.Slice is not stable.
func sortCandidates(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].Game.ID != candidates[j].Game.ID {
			return candidates[i].Game.ID < candidates[j].Game.ID
		}
		return candidates[i].Reason < candidates[j].Reason
	})
}

// dedupeCandidates keeps a single candidate per game ID. The input must
// already be sorted best-first; the first occurrence wins, so a title reached
// through both generation branches keeps its highest-scoring instance.
func dedupeCandidates(candidates []Candidate) []Candidate {
	seen := make(map[int64]struct{}, len(candidates))
	out := candidates[:0]
	for i := range candidates {
		id := candidates[i].Game.ID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, candidates[i])
	}
	return out
}

// diversityFilter greedily selects up to limit candidates from a best-first
// sorted list while capping genre repetition. A candidate is accepted only if
// at most overlapLimit of its genres already appear among previously accepted
// candidates; accepted candidates contribute all their genres to that set.
// The walk continues past rejected candidates, so the output can be shorter
// than limit without being padded.
func diversityFilter(candidates []Candidate, limit, overlapLimit int) []Candidate {
	if limit <= 0 {
		return []Candidate{}
	}

	selected := make([]Candidate, 0, limit)
	represented := make(map[string]struct{})

	for i := range candidates {
		overlap := 0
		for _, genre := range candidates[i].Game.Genres {
			if _, ok := represented[genre]; ok {
				overlap++
			}
		}
		if overlap > overlapLimit {
			continue
		}

		selected = append(selected, candidates[i])
		for _, genre := range candidates[i].Game.Genres {
			represented[genre] = struct{}{}
		}

		if len(selected) >= limit {
			break
		}
	}

	return selected
}

// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package recommend

import "testing"

func candidate(id int64, score float64, genres ...string) Candidate {
	return Candidate{
		Game:  Game{ID: id, Genres: genres},
		Score: score,
	}
}

func assertCandidateIDs(t *testing.T, got []Candidate, want []int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Game.ID != want[i] {
			t.Errorf("candidate[%d].Game.ID = %d, want %d", i, got[i].Game.ID, want[i])
		}
	}
}

func TestSortCandidates(t *testing.T) {
	t.Run("score descending", func(t *testing.T) {
		candidates := []Candidate{
			candidate(1, 0.5),
			candidate(2, 0.9),
			candidate(3, 0.7),
		}
		sortCandidates(candidates)
		assertCandidateIDs(t, candidates, []int64{2, 3, 1})
	})

	t.Run("ties broken by game ID ascending", func(t *testing.T) {
		candidates := []Candidate{
			candidate(9, 0.5),
			candidate(3, 0.5),
			candidate(7, 0.5),
		}
		sortCandidates(candidates)
		assertCandidateIDs(t, candidates, []int64{3, 7, 9})
	})

	t.Run("full ties ordered by reason", func(t *testing.T) {
		// Same game through both branches: same score, same ID,
		// different reason. The order must not depend on input order.
		forward := []Candidate{
			{Game: Game{ID: 5}, Score: 0.5, Reason: "Based on your interest in RPG games"},
			{Game: Game{ID: 5}, Score: 0.5, Reason: "Because you enjoyed Starfall"},
		}
		backward := []Candidate{forward[1], forward[0]}

		sortCandidates(forward)
		sortCandidates(backward)

		for i := range forward {
			if forward[i].Reason != backward[i].Reason {
				t.Fatalf("order depends on input order at index %d: %q vs %q",
					i, forward[i].Reason, backward[i].Reason)
			}
		}
	})
}

func TestDedupeCandidates(t *testing.T) {
	t.Run("first occurrence wins", func(t *testing.T) {
		candidates := []Candidate{
			{Game: Game{ID: 1}, Score: 0.9, Reason: "first"},
			{Game: Game{ID: 2}, Score: 0.8},
			{Game: Game{ID: 1}, Score: 0.6, Reason: "second"},
		}
		got := dedupeCandidates(candidates)
		assertCandidateIDs(t, got, []int64{1, 2})
		if got[0].Reason != "first" {
			t.Errorf("kept Reason = %q, want the higher-scoring instance", got[0].Reason)
		}
	})

	t.Run("no duplicates is identity", func(t *testing.T) {
		candidates := []Candidate{candidate(1, 0.9), candidate(2, 0.8)}
		got := dedupeCandidates(candidates)
		assertCandidateIDs(t, got, []int64{1, 2})
	})

	t.Run("empty input", func(t *testing.T) {
		if got := dedupeCandidates(nil); len(got) != 0 {
			t.Errorf("expected empty result, got %v", got)
		}
	})
}

func TestDiversityFilter(t *testing.T) {
	t.Run("rejects over-represented genres", func(t *testing.T) {
		candidates := []Candidate{
			candidate(1, 0.9, "RPG", "Adventure", "Fantasy"),
			// All three genres already represented: rejected.
			candidate(2, 0.8, "RPG", "Adventure", "Fantasy"),
			// Two overlaps is within the limit.
			candidate(3, 0.7, "RPG", "Adventure", "Strategy"),
			candidate(4, 0.6, "Shooter"),
		}
		got := diversityFilter(candidates, 10, 2)
		assertCandidateIDs(t, got, []int64{1, 3, 4})
	})

	t.Run("continues past rejections", func(t *testing.T) {
		candidates := []Candidate{
			candidate(1, 0.9, "RPG", "Adventure", "Fantasy"),
			candidate(2, 0.8, "RPG", "Adventure", "Fantasy"),
			candidate(3, 0.7, "Puzzle"),
		}
		got := diversityFilter(candidates, 2, 2)
		assertCandidateIDs(t, got, []int64{1, 3})
	})

	t.Run("stops at limit", func(t *testing.T) {
		candidates := []Candidate{
			candidate(1, 0.9, "RPG"),
			candidate(2, 0.8, "Shooter"),
			candidate(3, 0.7, "Puzzle"),
		}
		got := diversityFilter(candidates, 2, 2)
		assertCandidateIDs(t, got, []int64{1, 2})
	})

	t.Run("candidates without genres always pass", func(t *testing.T) {
		candidates := []Candidate{
			candidate(1, 0.9),
			candidate(2, 0.8),
		}
		got := diversityFilter(candidates, 10, 0)
		assertCandidateIDs(t, got, []int64{1, 2})
	})

	t.Run("zero limit yields empty", func(t *testing.T) {
		if got := diversityFilter([]Candidate{candidate(1, 0.9)}, 0, 2); len(got) != 0 {
			t.Errorf("expected empty result, got %v", got)
		}
	})

	t.Run("strict overlap limit", func(t *testing.T) {
		candidates := []Candidate{
			candidate(1, 0.9, "RPG"),
			candidate(2, 0.8, "RPG"),
			candidate(3, 0.7, "Shooter"),
		}
		got := diversityFilter(candidates, 10, 0)
		assertCandidateIDs(t, got, []int64{1, 3})
	})
}

// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package catalog

import (
	"strings"
	"time"

	"github.com/questlog/questlog/internal/recommend"
)

// gameRecord is the wire representation of a catalog game.
type gameRecord struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Summary          string            `json:"summary"`
	Rating           float64           `json:"rating"`
	RatingCount      int               `json:"rating_count"`
	FirstReleaseDate int64             `json:"first_release_date"`
	Cover            *coverRecord      `json:"cover"`
	Genres           []namedRecord     `json:"genres"`
	Themes           []namedRecord     `json:"themes"`
	InvolvedCompany  []companyRecord   `json:"involved_companies"`
	SimilarGames     []similarRecord   `json:"similar_games"`
}

// namedRecord is a catalog reference that only carries a display name.
type namedRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// coverRecord is the wire representation of cover art.
type coverRecord struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// companyRecord links a game to a company with its role flags.
type companyRecord struct {
	Company   namedRecord `json:"company"`
	Developer bool        `json:"developer"`
	Publisher bool        `json:"publisher"`
}

// similarRecord is the wire representation of a similar-games reference.
type similarRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	RatingCount int    `json:"rating_count"`
}

// toGame converts a wire record into the domain representation.
func (r *gameRecord) toGame() recommend.Game {
	game := recommend.Game{
		ID:          r.ID,
		Name:        r.Name,
		Summary:     r.Summary,
		Rating:      r.Rating,
		RatingCount: r.RatingCount,
		Genres:      namedList(r.Genres),
		Themes:      namedList(r.Themes),
	}

	if r.FirstReleaseDate > 0 {
		game.ReleaseDate = time.Unix(r.FirstReleaseDate, 0).UTC()
	}

	if r.Cover != nil {
		game.CoverURL = coverURL(r.Cover.URL)
	}

	for i := range r.InvolvedCompany {
		ic := &r.InvolvedCompany[i]
		if ic.Developer && game.Developer == "" {
			game.Developer = ic.Company.Name
		}
		if ic.Publisher && game.Publisher == "" {
			game.Publisher = ic.Company.Name
		}
	}

	if len(r.SimilarGames) > 0 {
		game.SimilarGames = make([]recommend.GameSummary, 0, len(r.SimilarGames))
		for _, s := range r.SimilarGames {
			game.SimilarGames = append(game.SimilarGames, recommend.GameSummary{
				ID:          s.ID,
				Name:        s.Name,
				RatingCount: s.RatingCount,
			})
		}
	}

	return game
}

// namedList extracts the display names from a list of references.
func namedList(records []namedRecord) []string {
	if len(records) == 0 {
		return nil
	}
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}

// coverURL upgrades a thumbnail cover reference to full cover size and
// normalizes the protocol-relative form the catalog returns.
func coverURL(url string) string {
	url = strings.Replace(url, "t_thumb", "t_cover_big", 1)
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	return url
}

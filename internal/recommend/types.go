// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package recommend

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared with the catalog and library collaborators.
var (
	// ErrGameNotFound indicates the catalog has no entry for the requested ID.
	// The pipeline treats this as a skippable per-item condition, not a
	// catalog outage.
	ErrGameNotFound = errors.New("game not found in catalog")

	// ErrInsufficientHistory indicates the user's library is too small for
	// personalized recommendations. It is an expected precondition, never a
	// failure; it routes the request to the popularity path.
	ErrInsufficientHistory = errors.New("insufficient library history")
)

// GameStatus classifies a user's relationship with a library entry.
type GameStatus string

const (
	StatusPlaying    GameStatus = "playing"
	StatusCompleted  GameStatus = "completed"
	StatusPlanToPlay GameStatus = "plan_to_play"
	StatusOnHold     GameStatus = "on_hold"
	StatusDropped    GameStatus = "dropped"
)

// Valid reports whether s is one of the known statuses.
func (s GameStatus) Valid() bool {
	switch s {
	case StatusPlaying, StatusCompleted, StatusPlanToPlay, StatusOnHold, StatusDropped:
		return true
	default:
		return false
	}
}

// GameSummary is the abbreviated form a catalog item uses to reference
// related titles (the similar-games list).
type GameSummary struct {
	// ID is the catalog identifier.
	ID int64 `json:"id"`

	// Name is the game title.
	Name string `json:"name"`

	// RatingCount is the number of catalog ratings; used to filter out
	// titles with too little signal.
	RatingCount int `json:"rating_count"`
}

// Game is a read-only view of a catalog item.
type Game struct {
	// ID is the catalog identifier.
	ID int64 `json:"id"`

	// Name is the game title.
	Name string `json:"name"`

	// Summary is the catalog description.
	Summary string `json:"summary,omitempty"`

	// Rating is the aggregate catalog rating on a 0-100 scale.
	Rating float64 `json:"rating"`

	// RatingCount is the number of ratings behind Rating.
	RatingCount int `json:"rating_count"`

	// CoverURL is the cover art URL.
	CoverURL string `json:"cover_url,omitempty"`

	// ReleaseDate is the first release date, if known.
	ReleaseDate time.Time `json:"release_date,omitempty"`

	// Genres is the set of genre tags.
	Genres []string `json:"genres"`

	// Themes is the set of theme tags.
	Themes []string `json:"themes"`

	// Developer is the primary development studio.
	Developer string `json:"developer,omitempty"`

	// Publisher is the primary publisher.
	Publisher string `json:"publisher,omitempty"`

	// SimilarGames lists related titles in catalog order.
	SimilarGames []GameSummary `json:"similar_games,omitempty"`
}

// LibraryEntry is a user's record of ownership of a single game.
// Identity (user, game) is immutable; rating, favorite and status are not.
type LibraryEntry struct {
	// GameID is the catalog identifier of the owned game.
	GameID int64 `json:"game_id"`

	// UserRating is the user's 1-10 rating, nil if unrated.
	UserRating *int `json:"user_rating,omitempty"`

	// Favorite marks the entry as a favorite.
	Favorite bool `json:"favorite"`

	// Status is the play status.
	Status GameStatus `json:"status"`

	// AddedAt is when the entry was created.
	AddedAt time.Time `json:"added_at"`

	// Game is the resolved catalog metadata (genres, themes). May be nil
	// when the snapshot is missing; such entries contribute nothing to the
	// preference profile.
	Game *Game `json:"game,omitempty"`
}

// ratingOrZero returns the user rating, treating unrated entries as 0 for
// ordering purposes.
func (e *LibraryEntry) ratingOrZero() int {
	if e.UserRating == nil {
		return 0
	}
	return *e.UserRating
}

// PreferenceProfile holds normalized per-tag affinity weights derived from a
// user's library. For any non-empty map the maximum weight is exactly 1.0 and
// all weights are in (0, 1]. Built fresh per request, never persisted.
type PreferenceProfile struct {
	// Genres maps genre name to normalized weight.
	Genres map[string]float64 `json:"genres"`

	// Themes maps theme name to normalized weight.
	Themes map[string]float64 `json:"themes"`
}

// Candidate is a not-yet-owned game proposed for recommendation.
type Candidate struct {
	// Game is the full catalog item.
	Game Game `json:"game"`

	// Reason is a human-readable explanation for the recommendation.
	Reason string `json:"reason"`

	// Score is the blended recommendation score in [0, 1].
	Score float64 `json:"score"`
}

// Strategy identifies which path produced a response.
type Strategy int

const (
	// StrategyPersonalized is the full preference-driven pipeline.
	StrategyPersonalized Strategy = iota
	// StrategyPopular is the popularity ranking used for cold-start users
	// and as the failure fallback.
	StrategyPopular
)

// String returns a human-readable strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyPersonalized:
		return "personalized"
	case StrategyPopular:
		return "popular"
	default:
		return "unknown"
	}
}

// Request represents a recommendation request.
type Request struct {
	// UserID is the user to recommend for.
	UserID string `json:"user_id"`

	// Count is the number of recommendations to return.
	// Defaults to Config.DefaultCount if zero.
	Count int `json:"count,omitempty"`

	// RequestID is a unique identifier for tracing. Generated if empty.
	RequestID string `json:"request_id,omitempty"`
}

// Response represents a recommendation response. The candidate list is
// ordered best-first and never exceeds the requested count.
type Response struct {
	// Candidates is the ordered list of recommendations.
	Candidates []Candidate `json:"candidates"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// UserID is the user the recommendations are for.
	UserID string `json:"user_id"`

	// Strategy is the path that produced the candidates.
	Strategy string `json:"strategy"`

	// Fallback is true when the popularity path replaced an attempted or
	// precluded personalized path.
	Fallback bool `json:"fallback"`

	// FallbackReason explains the fallback, empty otherwise.
	FallbackReason string `json:"fallback_reason,omitempty"`

	// LibrarySize is the number of library entries considered.
	LibrarySize int `json:"library_size"`

	// CandidateCount is the number of candidates returned.
	CandidateCount int `json:"candidate_count"`

	// LatencyMS is the total request latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// Metrics contains engine counters for observability.
type Metrics struct {
	// RequestCount is the total number of recommendation requests.
	RequestCount int64 `json:"request_count"`

	// PersonalizedCount is the number of requests served personalized.
	PersonalizedCount int64 `json:"personalized_count"`

	// FallbackCount is the number of requests served from the popularity
	// path, whether by precondition or by failure.
	FallbackCount int64 `json:"fallback_count"`
}

// CatalogService provides read-only access to the external game catalog.
// Implementations must honor context cancellation; every method is a
// blocking I/O operation.
type CatalogService interface {
	// GameByID returns full detail for a single game.
	// Returns ErrGameNotFound when the catalog has no such game.
	GameByID(ctx context.Context, id int64) (*Game, error)

	// GamesByGenre returns games carrying the given genre tag.
	// Page numbering starts at 1.
	GamesByGenre(ctx context.Context, genre string, page, pageSize int) ([]Game, error)

	// PopularGames returns games ordered by descending catalog rating.
	// Page numbering starts at 1.
	PopularGames(ctx context.Context, page, pageSize int) ([]Game, error)
}

// LibraryStore provides access to a user's game library with resolved
// catalog metadata.
type LibraryStore interface {
	// UserLibrary returns all library entries for a user. A user with no
	// entries yields an empty slice, not an error.
	UserLibrary(ctx context.Context, userID string) ([]LibraryEntry, error)
}

// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/questlog/questlog/internal/catalog"
	"github.com/questlog/questlog/internal/library"
	"github.com/questlog/questlog/internal/logging"
	"github.com/questlog/questlog/internal/metrics"
	"github.com/questlog/questlog/internal/recommend"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	defaultPageSize    = 20
	maxPageSize        = 100
	maxUserIDLength    = 128
)

// Recommender produces recommendations for a user.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) *recommend.Response
}

// LibraryStore is the library persistence surface the handlers need.
type LibraryStore interface {
	UserLibrary(ctx context.Context, userID string) ([]recommend.LibraryEntry, error)
	Upsert(ctx context.Context, userID string, entry recommend.LibraryEntry) error
	Remove(ctx context.Context, userID string, gameID int64) error
	SetStatus(ctx context.Context, userID string, gameID int64, status recommend.GameStatus) error
	SaveGame(ctx context.Context, game *recommend.Game) error
	Ping(ctx context.Context) error
}

// Handler bundles the service dependencies behind the HTTP endpoints.
type Handler struct {
	engine  Recommender
	catalog catalog.Service
	store   LibraryStore
}

// NewHandler creates a Handler wired to the given services.
func NewHandler(engine Recommender, cat catalog.Service, store LibraryStore) *Handler {
	return &Handler{
		engine:  engine,
		catalog: cat,
		store:   store,
	}
}

// handleRecommendations serves GET /api/v1/users/{userID}/recommendations.
func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !validUserID(userID) {
		respondError(w, r, http.StatusBadRequest, "invalid_user_id", "user ID is missing or too long")
		return
	}

	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid_count", "count must be an integer")
			return
		}
		count = parsed
	}

	resp := h.engine.Recommend(r.Context(), recommend.Request{
		UserID:    userID,
		Count:     count,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})

	metrics.RecordRecommendation(resp.Metadata.Strategy,
		time.Duration(resp.Metadata.LatencyMS)*time.Millisecond,
		len(resp.Candidates))
	if resp.Metadata.Fallback {
		metrics.RecordFallback(resp.Metadata.FallbackReason)
	}

	respondJSON(w, r, http.StatusOK, resp)
}

// handleGetLibrary serves GET /api/v1/users/{userID}/library.
func (h *Handler) handleGetLibrary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !validUserID(userID) {
		respondError(w, r, http.StatusBadRequest, "invalid_user_id", "user ID is missing or too long")
		return
	}

	entries, err := h.store.UserLibrary(r.Context(), userID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("user_id", sanitizeLogValue(userID)).
			Msg("Failed to load user library")
		respondError(w, r, http.StatusInternalServerError, "library_unavailable", "failed to load library")
		return
	}

	out := make([]libraryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLibraryEntryResponse(userID, e))
	}
	respondJSON(w, r, http.StatusOK, out)
}

// handleUpsertLibraryEntry serves PUT /api/v1/users/{userID}/library/{gameID}.
// The game snapshot is refreshed from the catalog on every upsert so the
// stored copy tracks upstream rating and tag changes.
func (h *Handler) handleUpsertLibraryEntry(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !validUserID(userID) {
		respondError(w, r, http.StatusBadRequest, "invalid_user_id", "user ID is missing or too long")
		return
	}

	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil || gameID <= 0 {
		respondError(w, r, http.StatusBadRequest, "invalid_game_id", "game ID must be a positive integer")
		return
	}

	var req upsertLibraryEntryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	game, err := h.catalog.GameByID(r.Context(), gameID)
	switch {
	case errors.Is(err, recommend.ErrGameNotFound):
		respondError(w, r, http.StatusNotFound, "game_not_found", "game does not exist in the catalog")
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Int64("game_id", gameID).
			Msg("Catalog lookup failed during library upsert")
		respondError(w, r, http.StatusBadGateway, "catalog_unavailable", "game catalog is unavailable")
		return
	}

	if err := h.store.SaveGame(r.Context(), game); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int64("game_id", gameID).
			Msg("Failed to save game snapshot")
		respondError(w, r, http.StatusInternalServerError, "library_unavailable", "failed to save library entry")
		return
	}

	entry := req.toEntry(gameID)
	if err := h.store.Upsert(r.Context(), userID, entry); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("user_id", sanitizeLogValue(userID)).
			Int64("game_id", gameID).
			Msg("Failed to upsert library entry")
		respondError(w, r, http.StatusInternalServerError, "library_unavailable", "failed to save library entry")
		return
	}

	entry.Game = game
	respondJSON(w, r, http.StatusOK, toLibraryEntryResponse(userID, entry))
}

// handleSetEntryStatus serves PATCH /api/v1/users/{userID}/library/{gameID}.
// It changes only the play status; rating and favorite are left alone.
func (h *Handler) handleSetEntryStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !validUserID(userID) {
		respondError(w, r, http.StatusBadRequest, "invalid_user_id", "user ID is missing or too long")
		return
	}

	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil || gameID <= 0 {
		respondError(w, r, http.StatusBadRequest, "invalid_game_id", "game ID must be a positive integer")
		return
	}

	var req setStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	switch err := h.store.SetStatus(r.Context(), userID, gameID, recommend.GameStatus(req.Status)); {
	case errors.Is(err, library.ErrEntryNotFound):
		respondError(w, r, http.StatusNotFound, "entry_not_found", "library entry does not exist")
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("user_id", sanitizeLogValue(userID)).
			Int64("game_id", gameID).
			Msg("Failed to update entry status")
		respondError(w, r, http.StatusInternalServerError, "library_unavailable", "failed to update library entry")
	default:
		respondJSON(w, r, http.StatusOK, map[string]string{"status": req.Status})
	}
}

// handleRemoveLibraryEntry serves DELETE /api/v1/users/{userID}/library/{gameID}.
func (h *Handler) handleRemoveLibraryEntry(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !validUserID(userID) {
		respondError(w, r, http.StatusBadRequest, "invalid_user_id", "user ID is missing or too long")
		return
	}

	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil || gameID <= 0 {
		respondError(w, r, http.StatusBadRequest, "invalid_game_id", "game ID must be a positive integer")
		return
	}

	switch err := h.store.Remove(r.Context(), userID, gameID); {
	case errors.Is(err, library.ErrEntryNotFound):
		respondError(w, r, http.StatusNotFound, "entry_not_found", "library entry does not exist")
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("user_id", sanitizeLogValue(userID)).
			Int64("game_id", gameID).
			Msg("Failed to remove library entry")
		respondError(w, r, http.StatusInternalServerError, "library_unavailable", "failed to remove library entry")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleGetGame serves GET /api/v1/games/{gameID}.
func (h *Handler) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil || gameID <= 0 {
		respondError(w, r, http.StatusBadRequest, "invalid_game_id", "game ID must be a positive integer")
		return
	}

	game, err := h.catalog.GameByID(r.Context(), gameID)
	switch {
	case errors.Is(err, recommend.ErrGameNotFound):
		respondError(w, r, http.StatusNotFound, "game_not_found", "game does not exist in the catalog")
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Int64("game_id", gameID).Msg("Catalog lookup failed")
		respondError(w, r, http.StatusBadGateway, "catalog_unavailable", "game catalog is unavailable")
	default:
		respondJSON(w, r, http.StatusOK, game)
	}
}

// handleSearchGames serves GET /api/v1/games/search?q=...&limit=N.
func (h *Handler) handleSearchGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, r, http.StatusBadRequest, "missing_query", "query parameter q is required")
		return
	}

	limit := parseBoundedInt(r.URL.Query().Get("limit"), defaultSearchLimit, maxSearchLimit)

	games, err := h.catalog.SearchGames(r.Context(), query, limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("query", sanitizeLogValue(query)).
			Msg("Catalog search failed")
		respondError(w, r, http.StatusBadGateway, "catalog_unavailable", "game catalog is unavailable")
		return
	}
	respondJSON(w, r, http.StatusOK, games)
}

// handlePopularGames serves GET /api/v1/games/popular?page=N&page_size=M.
func (h *Handler) handlePopularGames(w http.ResponseWriter, r *http.Request) {
	page := parseBoundedInt(r.URL.Query().Get("page"), 1, 1000)
	pageSize := parseBoundedInt(r.URL.Query().Get("page_size"), defaultPageSize, maxPageSize)

	games, err := h.catalog.PopularGames(r.Context(), page, pageSize)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Popular games lookup failed")
		respondError(w, r, http.StatusBadGateway, "catalog_unavailable", "game catalog is unavailable")
		return
	}
	respondJSON(w, r, http.StatusOK, games)
}

// handleLiveness serves GET /health/live. It reports process liveness
// only and never touches dependencies.
func (h *Handler) handleLiveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// handleReadiness serves GET /health/ready. Readiness requires the
// library database; the catalog is allowed to be down because the
// engine degrades to cached and fallback paths.
func (h *Handler) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
		respondError(w, r, http.StatusServiceUnavailable, "not_ready", "library database is unavailable")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// validUserID bounds user IDs to a sane length. IDs are opaque strings
// supplied by the caller.
func validUserID(userID string) bool {
	return userID != "" && len(userID) <= maxUserIDLength
}

// parseBoundedInt parses a positive integer query parameter, applying
// the default when absent or invalid and clamping to max.
func parseBoundedInt(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

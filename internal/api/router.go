// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the service router: global middleware, the
// versioned API surface, health probes, and the Prometheus endpoint.
func NewRouter(h *Handler, cfg *MiddlewareConfig) http.Handler {
	if cfg == nil {
		cfg = DefaultMiddlewareConfig()
	}

	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(cfg))
	r.Use(metricsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimitMiddleware(cfg))

		r.Get("/health", h.handleReadiness)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/recommendations", h.handleRecommendations)
			r.Get("/library", h.handleGetLibrary)
			r.Put("/library/{gameID}", h.handleUpsertLibraryEntry)
			r.Patch("/library/{gameID}", h.handleSetEntryStatus)
			r.Delete("/library/{gameID}", h.handleRemoveLibraryEntry)
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/search", h.handleSearchGames)
			r.Get("/popular", h.handlePopularGames)
			r.Get("/{gameID}", h.handleGetGame)
		})
	})

	r.Get("/health/live", h.handleLiveness)
	r.Get("/health/ready", h.handleReadiness)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

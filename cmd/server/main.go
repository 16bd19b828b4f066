// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

// Package main is the entry point for the Questlog server.
//
// Questlog tracks personal game libraries and produces personalized
// recommendations from play history. The server initializes components
// in the following order:
//
//  1. Configuration: layered settings from defaults, config.yaml, and
//     QUESTLOG_-prefixed environment variables (Koanf v2)
//  2. Library store: SQLite database holding per-user library entries
//     and cached game snapshots
//  3. Catalog client: rate-limited IGDB client wrapped in a circuit
//     breaker and an LRU cache
//  4. Recommendation engine: preference analysis, candidate generation,
//     scoring, and the popularity fallback
//  5. HTTP server: Chi router exposing the REST API, health probes, and
//     Prometheus metrics
//
// The server shuts down gracefully on SIGINT and SIGTERM, draining
// in-flight requests before closing the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questlog/questlog/internal/api"
	"github.com/questlog/questlog/internal/catalog"
	"github.com/questlog/questlog/internal/config"
	"github.com/questlog/questlog/internal/library"
	"github.com/questlog/questlog/internal/logging"
	"github.com/questlog/questlog/internal/recommend"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting Questlog server")

	store, err := library.Open(cfg.Database.Path, logging.WithComponent("library"))
	if err != nil {
		return fmt.Errorf("open library store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close library store")
		}
	}()

	client := catalog.NewClient(catalog.Config{
		BaseURL:           cfg.Catalog.URL,
		ClientID:          cfg.Catalog.ClientID,
		AccessToken:       cfg.Catalog.AccessToken,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		MinRatingCount:    cfg.Catalog.MinRatingCount,
	}, logging.WithComponent("catalog"))
	catalogSvc := catalog.NewCachedService(catalog.NewBreakerClient(client), catalog.CacheConfig{
		Capacity: cfg.Catalog.CacheCapacity,
		TTL:      cfg.Catalog.CacheTTL,
	})

	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), logging.WithComponent("recommend"))
	if err != nil {
		return fmt.Errorf("create recommendation engine: %w", err)
	}
	engine.SetProviders(catalogSvc, store)

	router := api.NewRouter(api.NewHandler(engine, catalogSvc, store), &api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.API.CORSAllowedOrigins,
		RateLimitRequests:  cfg.API.RateLimitReqs,
		RateLimitWindow:    cfg.API.RateLimitWindow,
		RateLimitDisabled:  cfg.API.RateLimitDisabled,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}

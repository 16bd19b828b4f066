// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

// Package catalog provides the client for the upstream game catalog API.
//
// The upstream speaks an Apicalypse-style query protocol: every endpoint is a
// POST whose body names the fields, filters and ordering of the result set.
// The raw client handles authentication, rate limiting and wire decoding;
// BreakerClient adds circuit breaking and CachedService adds an LRU cache in
// front of it. The layers compose:
//
//	client := catalog.NewClient(cfg)
//	service := catalog.NewCachedService(catalog.NewBreakerClient(client), cacheCfg)
package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/questlog/questlog/internal/metrics"
	"github.com/questlog/questlog/internal/recommend"
)

// maxErrorBodySize limits the response body read for error reporting.
const maxErrorBodySize = 64 * 1024 // 64KB

// minRatingCountDefault filters out titles with too few ratings to carry
// meaningful popularity signal.
const minRatingCountDefault = 20

// gameFields is the field list requested on every game query.
const gameFields = "fields id,name,summary,rating,rating_count,first_release_date," +
	"cover.url,genres.name,themes.name," +
	"involved_companies.company.name,involved_companies.developer,involved_companies.publisher," +
	"similar_games.id,similar_games.name,similar_games.rating_count;"

// Service is the full catalog surface. It extends the read operations the
// recommendation engine needs with free-text search for the API layer.
type Service interface {
	recommend.CatalogService

	// SearchGames performs a free-text search over the catalog.
	SearchGames(ctx context.Context, query string, limit int) ([]recommend.Game, error)
}

// Config holds the upstream catalog connection settings.
type Config struct {
	// BaseURL is the catalog API root, without a trailing slash.
	BaseURL string

	// ClientID is sent in the Client-ID header.
	ClientID string

	// AccessToken is sent as a bearer token.
	AccessToken string

	// Timeout is the per-request HTTP timeout.
	// Default: 30s.
	Timeout time.Duration

	// RequestsPerSecond caps the outbound request rate.
	// Default: 4 (the upstream's published limit).
	RequestsPerSecond float64

	// MinRatingCount excludes titles with fewer catalog ratings.
	// Default: 20.
	MinRatingCount int
}

// The decorators and the raw client all satisfy the full Service surface.
var (
	_ Service = (*Client)(nil)
	_ Service = (*BreakerClient)(nil)
	_ Service = (*CachedService)(nil)
)

// Client is the raw HTTP client for the catalog API.
// All methods are safe for concurrent use.
type Client struct {
	baseURL        string
	clientID       string
	accessToken    string
	httpClient     *http.Client
	limiter        *rate.Limiter
	minRatingCount int
	logger         zerolog.Logger
}

// NewClient creates a catalog client from the given configuration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 4
	}
	if cfg.MinRatingCount <= 0 {
		cfg.MinRatingCount = minRatingCountDefault
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		clientID:    cfg.ClientID,
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		minRatingCount: cfg.MinRatingCount,
		logger:         logger.With().Str("component", "catalog").Logger(),
	}
}

// GameByID returns full detail for a single game.
// Returns recommend.ErrGameNotFound when the catalog has no such game; an
// empty result is recorded as a "not_found" outcome, distinct from transport
// errors.
func (c *Client) GameByID(ctx context.Context, id int64) (*recommend.Game, error) {
	query := fmt.Sprintf("%s where id = %d; limit 1;", gameFields, id)

	start := time.Now()
	records, err := c.doQuery(ctx, query)

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case len(records) == 0:
		outcome = "not_found"
	}
	metrics.RecordCatalogRequest("game_by_id", outcome, time.Since(start))

	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, recommend.ErrGameNotFound
	}
	game := records[0].toGame()
	return &game, nil
}

// GamesByGenre returns games carrying the given genre tag, best rated first.
// Page numbering starts at 1.
func (c *Client) GamesByGenre(ctx context.Context, genre string, page, pageSize int) ([]recommend.Game, error) {
	page, pageSize = normalizePage(page, pageSize)
	query := fmt.Sprintf(
		"%s where genres.name = %s & rating_count >= %d; sort rating desc; limit %d; offset %d;",
		gameFields, quote(genre), c.minRatingCount, pageSize, (page-1)*pageSize,
	)
	return c.queryGames(ctx, "games_by_genre", query)
}

// PopularGames returns games ordered by descending rating.
// Page numbering starts at 1.
func (c *Client) PopularGames(ctx context.Context, page, pageSize int) ([]recommend.Game, error) {
	page, pageSize = normalizePage(page, pageSize)
	query := fmt.Sprintf(
		"%s where rating != null & rating_count >= %d; sort rating desc; limit %d; offset %d;",
		gameFields, c.minRatingCount, pageSize, (page-1)*pageSize,
	)
	return c.queryGames(ctx, "popular_games", query)
}

// SearchGames performs a free-text search over the catalog.
func (c *Client) SearchGames(ctx context.Context, query string, limit int) ([]recommend.Game, error) {
	if limit <= 0 {
		limit = 10
	}
	body := fmt.Sprintf(
		"search %s; %s where rating_count >= %d; limit %d;",
		quote(query), gameFields, c.minRatingCount, limit,
	)
	return c.queryGames(ctx, "search_games", body)
}

// queryGames posts an Apicalypse query to the games endpoint and decodes the
// result into domain games.
func (c *Client) queryGames(ctx context.Context, endpoint, query string) ([]recommend.Game, error) {
	start := time.Now()

	records, err := c.doQuery(ctx, query)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordCatalogRequest(endpoint, outcome, time.Since(start))

	if err != nil {
		return nil, err
	}

	games := make([]recommend.Game, 0, len(records))
	for i := range records {
		games = append(games, records[i].toGame())
	}
	return games, nil
}

// doQuery performs the rate-limited HTTP exchange.
func (c *Client) doQuery(ctx context.Context, query string) ([]gameRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/games", bytes.NewBufferString(query))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("catalog request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var records []gameRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	c.logger.Debug().Int("results", len(records)).Msg("catalog query complete")
	return records, nil
}

// normalizePage applies defaults to page and pageSize.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return page, pageSize
}

// quote wraps a string value for an Apicalypse query, escaping backslashes
// and embedded quotes so user input cannot break out of the literal.
// Backslashes go first: a trailing `\` would otherwise escape the closing
// quote.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// readBodyForError reads the response body for error reporting (max 64KB).
// Returns the body content or a placeholder message if reading fails.
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

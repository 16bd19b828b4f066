// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/questlog/questlog/internal/metrics"
	"github.com/questlog/questlog/internal/recommend"
)

// newTestClient points a Client at a test server with generous rate limits.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	return NewClient(Config{
		BaseURL:           server.URL,
		ClientID:          "test-client",
		AccessToken:       "test-token",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
	}, zerolog.Nop())
}

func TestClientGameByID(t *testing.T) {
	var gotQuery string
	var gotHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotQuery = string(body)
		gotHeaders = r.Header.Clone()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"id": 42,
			"name": "Chrono Quest",
			"summary": "A time travel RPG",
			"rating": 88.5,
			"rating_count": 1500,
			"first_release_date": 1426809600,
			"cover": {"id": 1, "url": "//images.example.com/t_thumb/abc.jpg"},
			"genres": [{"id": 12, "name": "RPG"}],
			"themes": [{"id": 1, "name": "Fantasy"}, {"id": 2, "name": "Time Travel"}],
			"involved_companies": [
				{"company": {"id": 5, "name": "Chrono Studio"}, "developer": true, "publisher": false},
				{"company": {"id": 6, "name": "Big Publisher"}, "developer": false, "publisher": true}
			],
			"similar_games": [{"id": 43, "name": "Time Saga", "rating_count": 300}]
		}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	game, err := client.GameByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("GameByID() error = %v", err)
	}

	if gotHeaders.Get("Client-ID") != "test-client" {
		t.Errorf("Client-ID header = %q, want test-client", gotHeaders.Get("Client-ID"))
	}
	if gotHeaders.Get("Authorization") != "Bearer test-token" {
		t.Errorf("Authorization header = %q", gotHeaders.Get("Authorization"))
	}
	if !strings.Contains(gotQuery, "where id = 42") {
		t.Errorf("query missing id filter: %s", gotQuery)
	}

	if game.ID != 42 || game.Name != "Chrono Quest" {
		t.Errorf("game = %+v, want id 42 Chrono Quest", game)
	}
	if game.Rating != 88.5 || game.RatingCount != 1500 {
		t.Errorf("rating = %v (%d), want 88.5 (1500)", game.Rating, game.RatingCount)
	}
	if game.CoverURL != "https://images.example.com/t_cover_big/abc.jpg" {
		t.Errorf("CoverURL = %q, want upgraded cover URL", game.CoverURL)
	}
	if len(game.Genres) != 1 || game.Genres[0] != "RPG" {
		t.Errorf("Genres = %v, want [RPG]", game.Genres)
	}
	if len(game.Themes) != 2 {
		t.Errorf("Themes = %v, want 2 themes", game.Themes)
	}
	if game.Developer != "Chrono Studio" || game.Publisher != "Big Publisher" {
		t.Errorf("companies = %q / %q", game.Developer, game.Publisher)
	}
	if len(game.SimilarGames) != 1 || game.SimilarGames[0].ID != 43 {
		t.Errorf("SimilarGames = %+v", game.SimilarGames)
	}
	if game.ReleaseDate.Year() != 2015 {
		t.Errorf("ReleaseDate = %v, want year 2015", game.ReleaseDate)
	}
}

func TestClientGameByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	before := testutil.ToFloat64(metrics.CatalogRequests.WithLabelValues("game_by_id", "not_found"))

	client := newTestClient(t, server)
	_, err := client.GameByID(context.Background(), 999)
	if !errors.Is(err, recommend.ErrGameNotFound) {
		t.Errorf("GameByID() error = %v, want ErrGameNotFound", err)
	}

	after := testutil.ToFloat64(metrics.CatalogRequests.WithLabelValues("game_by_id", "not_found"))
	if after != before+1 {
		t.Errorf("not_found outcome count = %v, want %v", after, before+1)
	}
}

func TestClientGamesByGenre(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotQuery = string(body)
		_, _ = w.Write([]byte(`[{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	games, err := client.GamesByGenre(context.Background(), "RPG", 2, 3)
	if err != nil {
		t.Fatalf("GamesByGenre() error = %v", err)
	}

	if len(games) != 2 {
		t.Errorf("got %d games, want 2", len(games))
	}
	if !strings.Contains(gotQuery, `genres.name = "RPG"`) {
		t.Errorf("query missing genre filter: %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "rating_count >= 20") {
		t.Errorf("query missing rating count floor: %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "limit 3") || !strings.Contains(gotQuery, "offset 3") {
		t.Errorf("query missing pagination: %s", gotQuery)
	}
}

func TestClientPopularGames(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotQuery = string(body)
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Top", "rating": 97}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	games, err := client.PopularGames(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("PopularGames() error = %v", err)
	}

	if len(games) != 1 || games[0].Rating != 97 {
		t.Errorf("games = %+v", games)
	}
	if !strings.Contains(gotQuery, "sort rating desc") {
		t.Errorf("query missing sort: %s", gotQuery)
	}
	if !strings.Contains(gotQuery, "offset 0") {
		t.Errorf("query offset wrong: %s", gotQuery)
	}
}

func TestClientSearchGames(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotQuery = string(body)
		_, _ = w.Write([]byte(`[{"id": 7, "name": "Zelda-like"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	games, err := client.SearchGames(context.Background(), `adventure "quoted"`, 5)
	if err != nil {
		t.Fatalf("SearchGames() error = %v", err)
	}

	if len(games) != 1 {
		t.Errorf("got %d games, want 1", len(games))
	}
	if !strings.Contains(gotQuery, `search "adventure \"quoted\""`) {
		t.Errorf("query did not escape embedded quotes: %s", gotQuery)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "zelda", `"zelda"`},
		{"embedded quote", `say "hi"`, `"say \"hi\""`},
		{"trailing backslash", `foo\`, `"foo\\"`},
		{"backslash before quote", `foo\"`, `"foo\\\""`},
		{"empty", "", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quote(tt.input); got != tt.want {
				t.Errorf("quote(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestClientUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.PopularGames(context.Background(), 1, 10)
	if err == nil {
		t.Fatal("expected error for HTTP 401")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error %q should carry the status code", err)
	}
	if errors.Is(err, recommend.ErrGameNotFound) {
		t.Error("HTTP failure must not map to ErrGameNotFound")
	}
}

func TestClientContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body: the server only watches for client disconnect
		// once the request body is consumed, and without that the context
		// is never canceled and Close deadlocks.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(t, server)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.GameByID(ctx, 1); err == nil {
		t.Error("expected error on context timeout")
	}
}

// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

// Package library persists user game libraries in SQLite.
//
// The store keeps two tables: library_entries, keyed by (user_id, game_id),
// and games, a local snapshot of catalog metadata so preference analysis does
// not need a catalog round trip per library entry. Snapshots are refreshed
// whenever a game is saved.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	// SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/questlog/questlog/internal/metrics"
	"github.com/questlog/questlog/internal/recommend"
)

// ErrEntryNotFound indicates the user has no library entry for the game.
var ErrEntryNotFound = errors.New("library entry not found")

// Store is the SQLite-backed library store.
// All methods are safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

var _ recommend.LibraryStore = (*Store)(nil)

// Open opens (creating if necessary) the library database at path.
//
// Pragmas: WAL journaling for read concurrency, a 10s busy timeout, and
// foreign keys on so entries cannot reference games that were never
// snapshotted. The modernc driver takes each pragma as a `_pragma=` DSN
// parameter.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path required")
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// SQLite with WAL: a single writer connection avoids lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "library").Logger(),
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the schema if it does not exist.
func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS games (
	id           INTEGER PRIMARY KEY,
	name         TEXT NOT NULL,
	summary      TEXT NOT NULL DEFAULT '',
	rating       REAL NOT NULL DEFAULT 0,
	rating_count INTEGER NOT NULL DEFAULT 0,
	cover_url    TEXT NOT NULL DEFAULT '',
	release_date INTEGER NOT NULL DEFAULT 0,
	genres       TEXT NOT NULL DEFAULT '[]',
	themes       TEXT NOT NULL DEFAULT '[]',
	developer    TEXT NOT NULL DEFAULT '',
	publisher    TEXT NOT NULL DEFAULT '',
	updated_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS library_entries (
	user_id     TEXT NOT NULL,
	game_id     INTEGER NOT NULL,
	user_rating INTEGER,
	favorite    INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	added_at    INTEGER NOT NULL,
	PRIMARY KEY (user_id, game_id),
	FOREIGN KEY (game_id) REFERENCES games (id)
);

CREATE INDEX IF NOT EXISTS idx_library_entries_user ON library_entries (user_id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// UserLibrary returns all library entries for a user with their game
// snapshots resolved. A user with no entries yields an empty slice.
func (s *Store) UserLibrary(ctx context.Context, userID string) ([]recommend.LibraryEntry, error) {
	start := time.Now()
	entries, err := s.userLibrary(ctx, userID)
	metrics.RecordDBQuery("user_library", time.Since(start), err)
	return entries, err
}

func (s *Store) userLibrary(ctx context.Context, userID string) ([]recommend.LibraryEntry, error) {
	const query = `
SELECT e.game_id, e.user_rating, e.favorite, e.status, e.added_at,
       g.id, g.name, g.summary, g.rating, g.rating_count, g.cover_url,
       g.release_date, g.genres, g.themes, g.developer, g.publisher
FROM library_entries e
LEFT JOIN games g ON g.id = e.game_id
WHERE e.user_id = ?
ORDER BY e.game_id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query library for user %s: %w", userID, err)
	}
	defer rows.Close()

	entries := make([]recommend.LibraryEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate library rows: %w", err)
	}

	return entries, nil
}

// scanEntry reads one joined row into a library entry.
func scanEntry(rows *sql.Rows) (recommend.LibraryEntry, error) {
	var (
		entry      recommend.LibraryEntry
		userRating sql.NullInt64
		favorite   int
		addedAt    int64

		gameID      sql.NullInt64
		name        sql.NullString
		summary     sql.NullString
		rating      sql.NullFloat64
		ratingCount sql.NullInt64
		coverURL    sql.NullString
		releaseDate sql.NullInt64
		genresJSON  sql.NullString
		themesJSON  sql.NullString
		developer   sql.NullString
		publisher   sql.NullString
	)

	err := rows.Scan(
		&entry.GameID, &userRating, &favorite, &entry.Status, &addedAt,
		&gameID, &name, &summary, &rating, &ratingCount, &coverURL,
		&releaseDate, &genresJSON, &themesJSON, &developer, &publisher,
	)
	if err != nil {
		return recommend.LibraryEntry{}, fmt.Errorf("failed to scan library row: %w", err)
	}

	if userRating.Valid {
		v := int(userRating.Int64)
		entry.UserRating = &v
	}
	entry.Favorite = favorite != 0
	entry.AddedAt = time.Unix(addedAt, 0).UTC()

	if gameID.Valid {
		game := &recommend.Game{
			ID:          gameID.Int64,
			Name:        name.String,
			Summary:     summary.String,
			Rating:      rating.Float64,
			RatingCount: int(ratingCount.Int64),
			CoverURL:    coverURL.String,
			Developer:   developer.String,
			Publisher:   publisher.String,
		}
		if releaseDate.Int64 > 0 {
			game.ReleaseDate = time.Unix(releaseDate.Int64, 0).UTC()
		}
		if err := unmarshalTags(genresJSON.String, &game.Genres); err != nil {
			return recommend.LibraryEntry{}, err
		}
		if err := unmarshalTags(themesJSON.String, &game.Themes); err != nil {
			return recommend.LibraryEntry{}, err
		}
		entry.Game = game
	}

	return entry, nil
}

// unmarshalTags decodes a JSON tag array, tolerating the empty string that a
// legacy row may carry.
func unmarshalTags(raw string, dst *[]string) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to decode tag list: %w", err)
	}
	return nil
}

// Upsert inserts or updates a library entry. The game snapshot must already
// exist; use SaveGame first for new titles.
func (s *Store) Upsert(ctx context.Context, userID string, entry recommend.LibraryEntry) error {
	start := time.Now()
	err := s.upsert(ctx, userID, entry)
	metrics.RecordDBQuery("upsert", time.Since(start), err)
	return err
}

func (s *Store) upsert(ctx context.Context, userID string, entry recommend.LibraryEntry) error {
	const query = `
INSERT INTO library_entries (user_id, game_id, user_rating, favorite, status, added_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, game_id) DO UPDATE SET
	user_rating = excluded.user_rating,
	favorite    = excluded.favorite,
	status      = excluded.status`

	var rating sql.NullInt64
	if entry.UserRating != nil {
		rating = sql.NullInt64{Int64: int64(*entry.UserRating), Valid: true}
	}

	addedAt := entry.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		userID, entry.GameID, rating, boolToInt(entry.Favorite), string(entry.Status), addedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert library entry (%s, %d): %w", userID, entry.GameID, err)
	}

	s.logger.Debug().Str("user_id", userID).Int64("game_id", entry.GameID).Msg("library entry upserted")
	return nil
}

// Remove deletes a library entry.
// Returns ErrEntryNotFound when the user does not have the game.
func (s *Store) Remove(ctx context.Context, userID string, gameID int64) error {
	start := time.Now()
	err := s.remove(ctx, userID, gameID)
	metrics.RecordDBQuery("remove", time.Since(start), err)
	return err
}

func (s *Store) remove(ctx context.Context, userID string, gameID int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM library_entries WHERE user_id = ? AND game_id = ?", userID, gameID)
	if err != nil {
		return fmt.Errorf("failed to remove library entry (%s, %d): %w", userID, gameID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check removal result: %w", err)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// SetStatus changes the play status of an existing entry without touching
// rating or favorite.
// Returns ErrEntryNotFound when the user does not have the game.
func (s *Store) SetStatus(ctx context.Context, userID string, gameID int64, status recommend.GameStatus) error {
	start := time.Now()
	err := s.setStatus(ctx, userID, gameID, status)
	metrics.RecordDBQuery("set_status", time.Since(start), err)
	return err
}

func (s *Store) setStatus(ctx context.Context, userID string, gameID int64, status recommend.GameStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE library_entries SET status = ? WHERE user_id = ? AND game_id = ?",
		string(status), userID, gameID)
	if err != nil {
		return fmt.Errorf("failed to set status (%s, %d): %w", userID, gameID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check status update result: %w", err)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}

	s.logger.Debug().Str("user_id", userID).Int64("game_id", gameID).
		Str("status", string(status)).Msg("library entry status updated")
	return nil
}

// SaveGame inserts or refreshes a game snapshot.
func (s *Store) SaveGame(ctx context.Context, game *recommend.Game) error {
	start := time.Now()
	err := s.saveGame(ctx, game)
	metrics.RecordDBQuery("save_game", time.Since(start), err)
	return err
}

func (s *Store) saveGame(ctx context.Context, game *recommend.Game) error {
	if game == nil {
		return errors.New("nil game")
	}

	genres, err := json.Marshal(tagsOrEmpty(game.Genres))
	if err != nil {
		return fmt.Errorf("failed to encode genres: %w", err)
	}
	themes, err := json.Marshal(tagsOrEmpty(game.Themes))
	if err != nil {
		return fmt.Errorf("failed to encode themes: %w", err)
	}

	var releaseDate int64
	if !game.ReleaseDate.IsZero() {
		releaseDate = game.ReleaseDate.Unix()
	}

	const query = `
INSERT INTO games (id, name, summary, rating, rating_count, cover_url, release_date,
                   genres, themes, developer, publisher, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	name         = excluded.name,
	summary      = excluded.summary,
	rating       = excluded.rating,
	rating_count = excluded.rating_count,
	cover_url    = excluded.cover_url,
	release_date = excluded.release_date,
	genres       = excluded.genres,
	themes       = excluded.themes,
	developer    = excluded.developer,
	publisher    = excluded.publisher,
	updated_at   = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		game.ID, game.Name, game.Summary, game.Rating, game.RatingCount, game.CoverURL,
		releaseDate, string(genres), string(themes), game.Developer, game.Publisher,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save game %d: %w", game.ID, err)
	}
	return nil
}

// tagsOrEmpty keeps snapshot columns as JSON arrays, never null.
func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

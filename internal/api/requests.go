// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package api

import (
	"time"

	"github.com/questlog/questlog/internal/recommend"
)

// upsertLibraryEntryRequest is the body for PUT library entry requests.
// The game ID comes from the URL, so the body only carries the mutable
// per-user fields.
type upsertLibraryEntryRequest struct {
	UserRating *int   `json:"user_rating,omitempty" validate:"omitempty,min=1,max=10"`
	Favorite   bool   `json:"favorite"`
	Status     string `json:"status" validate:"required,oneof=playing completed plan_to_play on_hold dropped"`
}

func (req *upsertLibraryEntryRequest) toEntry(gameID int64) recommend.LibraryEntry {
	return recommend.LibraryEntry{
		GameID:     gameID,
		UserRating: req.UserRating,
		Favorite:   req.Favorite,
		Status:     recommend.GameStatus(req.Status),
		AddedAt:    time.Now().UTC(),
	}
}

// setStatusRequest is the body for PATCH library entry requests.
type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=playing completed plan_to_play on_hold dropped"`
}

// libraryEntryResponse is the wire shape of a library entry. The full
// game snapshot is embedded when available.
type libraryEntryResponse struct {
	UserID     string          `json:"user_id"`
	GameID     int64           `json:"game_id"`
	UserRating *int            `json:"user_rating,omitempty"`
	Favorite   bool            `json:"favorite"`
	Status     string          `json:"status"`
	AddedAt    time.Time       `json:"added_at"`
	Game       *recommend.Game `json:"game,omitempty"`
}

func toLibraryEntryResponse(userID string, e recommend.LibraryEntry) libraryEntryResponse {
	return libraryEntryResponse{
		UserID:     userID,
		GameID:     e.GameID,
		UserRating: e.UserRating,
		Favorite:   e.Favorite,
		Status:     string(e.Status),
		AddedAt:    e.AddedAt,
		Game:       e.Game,
	}
}

// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

// Package recommend implements the personalized game recommendation engine.
//
// The engine derives a preference profile from a user's game library, generates
// candidate games from two sources (titles similar to the user's favorites and
// top titles in the user's strongest genres), scores every candidate against
// the profile, and selects a diversity-filtered final list.
//
// # Pipeline
//
//	library load -> preference analysis -> favorite selection
//	             -> candidate generation (concurrent fan-out)
//	             -> scoring -> deduplication -> diversity filtering
//
// Users with fewer than Config.MinLibrarySize entries receive catalog-wide
// popular games instead. Any failure inside the personalized pipeline is
// absorbed the same way: the engine logs it and falls back to popularity
// ranking, so Engine.Recommend never surfaces an error to its caller.
//
// # Dependencies
//
// This package has no dependencies on other internal packages. The
// CatalogService and LibraryStore interfaces are implemented by the catalog
// and library packages, which keeps the import graph acyclic and the engine
// testable with in-memory fakes.
//
// # Thread Safety
//
// An Engine is safe for concurrent use. Each request is independent and
// read-only; no state is shared between requests beyond atomic counters.
package recommend

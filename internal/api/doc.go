// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

// Package api exposes the HTTP surface of the service: recommendation,
// library, and game catalog endpoints mounted on a Chi router with
// production middleware from the Chi ecosystem (request IDs, CORS,
// per-route rate limiting) and Prometheus instrumentation.
package api

// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package api

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"github.com/questlog/questlog/internal/logging"
)

// validate is the shared validator instance. validator.Validate caches
// struct metadata, so a single instance is reused across requests.
var validate = validator.New(validator.WithRequiredStructEnabled())

// APIResponse is the envelope for all JSON responses.
type APIResponse struct {
	Status   string        `json:"status"`
	Data     interface{}   `json:"data,omitempty"`
	Error    *APIError     `json:"error,omitempty"`
	Metadata *ResponseMeta `json:"metadata,omitempty"`
}

// APIError carries a machine-readable code alongside the human message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMeta holds response metadata common to all endpoints.
type ResponseMeta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// sanitizeLogValue escapes control characters in user-supplied strings
// before they reach structured logs, preventing log injection.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		default:
			if r < 0x20 || r == 0x7f {
				b.WriteString(fmt.Sprintf("\\x%02x", r))
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// generateETag computes a weak ETag from the response body using FNV-1a.
// Weak ETags are sufficient here: responses are byte-stable per payload
// and we only need cache revalidation, not byte-range support.
func generateETag(body []byte) string {
	h := fnv.New64a()
	h.Write(body) //nolint:errcheck // fnv Write never returns an error
	return fmt.Sprintf(`W/"%x"`, h.Sum64())
}

// respondJSON writes a success envelope with cache validation headers.
// The ETag covers the data payload only, not the envelope metadata, so
// identical payloads revalidate even though the response timestamp
// changes. A matching If-None-Match yields a 304 without a body.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal response")
		http.Error(w, `{"status":"error","error":{"code":"internal","message":"encoding failure"}}`, http.StatusInternalServerError)
		return
	}

	etag := generateETag(payload)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Header().Set("Vary", "Accept-Encoding")

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	resp := APIResponse{
		Status: "success",
		Data:   json.RawMessage(payload),
		Metadata: &ResponseMeta{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	}

	body, err := json.Marshal(resp)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal response")
		http.Error(w, `{"status":"error","error":{"code":"internal","message":"encoding failure"}}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write response body")
	}
}

// respondError writes an error envelope. The message is returned to the
// client verbatim, so callers must not include internal details in it.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := APIResponse{
		Status: "error",
		Error:  &APIError{Code: code, Message: message},
		Metadata: &ResponseMeta{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	}

	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write error body")
	}
}

// decodeAndValidate decodes a JSON request body into dst and runs
// struct validation. Returned errors are safe to echo to clients.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("validation failed on field %q: %s", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

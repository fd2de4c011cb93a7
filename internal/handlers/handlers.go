// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API: the public read endpoints
// used by the portfolio frontend and the admin endpoints behind the admin
// token.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/docker/go-units"
	"github.com/google/uuid"

	"folio/internal/ingest"
	"folio/internal/models"
	"folio/internal/store"
)

// maxJSONBody caps JSON request bodies on the admin API.
const maxJSONBody = 1 << 20

// BlogRepository is the blog persistence used by the handlers.
type BlogRepository interface {
	List(ctx context.Context, publishedOnly bool) ([]models.BlogPost, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	SetPublished(ctx context.Context, id int64, published bool) (*models.BlogPost, error)
	Delete(ctx context.Context, id int64) (*models.BlogPost, error)
	Count(ctx context.Context) (total, published int, err error)
}

// ProjectRepository is the project persistence used by the handlers.
type ProjectRepository interface {
	List(ctx context.Context) ([]models.Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Image(ctx context.Context, id uuid.UUID) (data []byte, mime string, found bool, err error)
	Create(ctx context.Context, in models.ProjectInput) (*models.Project, error)
	Update(ctx context.Context, id uuid.UUID, in models.ProjectInput) (*models.Project, error)
	SetImage(ctx context.Context, id uuid.UUID, data []byte, mime string) (*models.Project, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Reorder(ctx context.Context, ids []uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// PageStore caches rendered responses by site path. A nil *cache.PageCache
// satisfies it and never hits.
type PageStore interface {
	Get(ctx context.Context, path string) ([]byte, bool)
	Set(ctx context.Context, path string, body []byte)
}

// Invalidator marks cached pages stale without blocking the request.
type Invalidator interface {
	Invalidate(ctx context.Context, reason string, paths ...string)
}

// Uploader runs the blog ingestion pipeline.
type Uploader interface {
	Upload(ctx context.Context, req ingest.UploadRequest) (*models.BlogPost, bool, error)
}

// AssetRemover deletes a post's published images.
type AssetRemover interface {
	RemoveAll(ctx context.Context, slug string) (int, error)
}

// ExperienceService refreshes and serves the work-experience payload.
type ExperienceService interface {
	Refresh(ctx context.Context) (*models.ExperienceCache, error)
	Current(ctx context.Context) (json.RawMessage, error)
}

// CacheLog lists recent page invalidations.
type CacheLog interface {
	RecentEntries(ctx context.Context, limit int) ([]store.CacheLogEntry, error)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// writeJSON sends data as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeRawJSON sends an already encoded JSON body.
func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError sends {"error": msg} with optional details.
func writeError(w http.ResponseWriter, status int, msg string, details ...any) {
	body := errorBody{Error: msg}
	if len(details) > 0 && details[0] != nil {
		body.Details = details[0]
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a bounded JSON body into dst. The returned error is
// safe to show to the client.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body exceeds %s", humanSize(maxErr.Limit))
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		default:
			return errors.New("request body is not valid JSON")
		}
	}
	return nil
}

// encodeJSON marshals data for the page cache.
func encodeJSON(data any) ([]byte, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// parseInt64 parses a positive integer id.
func parseInt64(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func humanSize(n int64) string {
	return units.HumanSize(float64(n))
}

// tooLarge reports whether err comes from an exceeded MaxBytesReader and
// returns the limit.
func tooLarge(err error) (int64, bool) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return maxErr.Limit, true
	}
	return 0, false
}

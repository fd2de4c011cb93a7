// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"folio/internal/logger"
	"folio/internal/store"
)

const (
	defaultCacheLogLimit = 50
	maxCacheLogLimit     = 500
)

// PagePurger empties the whole page cache.
type PagePurger interface {
	InvalidateAll(ctx context.Context) (int, error)
}

// Admin groups the dashboard and maintenance handlers.
type Admin struct {
	blogs      BlogRepository
	projects   ProjectRepository
	experience ExperienceService
	cacheLog   CacheLog
	purger     PagePurger
}

// NewAdmin creates the Admin handler group. cacheLog and purger may be nil.
func NewAdmin(blogs BlogRepository, projects ProjectRepository, experience ExperienceService, cacheLog CacheLog, purger PagePurger) *Admin {
	return &Admin{
		blogs:      blogs,
		projects:   projects,
		experience: experience,
		cacheLog:   cacheLog,
		purger:     purger,
	}
}

type statsResponse struct {
	Projects       int `json:"projects"`
	BlogPosts      int `json:"blogPosts"`
	PublishedPosts int `json:"publishedPosts"`
}

// Stats returns the dashboard counters.
func (a *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.WithCtx(ctx)

	projects, err := a.projects.Count(ctx)
	if err != nil {
		log.Error("count projects failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	total, published, err := a.blogs.Count(ctx)
	if err != nil {
		log.Error("count blogs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Projects:       projects,
		BlogPosts:      total,
		PublishedPosts: published,
	})
}

type refreshResponse struct {
	OK              bool   `json:"ok"`
	Message         string `json:"message,omitempty"`
	ExperienceCount int    `json:"experienceCount"`
}

// RefreshCache pulls the latest experience payload from the upstream
// service and replaces the cached copy.
func (a *Admin) RefreshCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	row, err := a.experience.Refresh(ctx)
	if err != nil {
		logger.WithCtx(ctx).Error("experience refresh failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":      false,
			"error":   "Failed to refresh LinkedIn experience data",
			"details": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		OK:              true,
		Message:         "LinkedIn experience data refreshed successfully",
		ExperienceCount: row.Count(),
	})
}

// CacheLog lists recent page invalidations, newest first. ?limit=N caps
// the result (default 50, max 500).
func (a *Admin) CacheLog(w http.ResponseWriter, r *http.Request) {
	if a.cacheLog == nil {
		writeJSON(w, http.StatusOK, []store.CacheLogEntry{})
		return
	}

	limit := defaultCacheLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxCacheLogLimit)
	}

	entries, err := a.cacheLog.RecentEntries(r.Context(), limit)
	if err != nil {
		logger.WithCtx(r.Context()).Error("list cache log failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch cache log")
		return
	}
	if entries == nil {
		entries = []store.CacheLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// PurgeCache drops every cached page.
func (a *Admin) PurgeCache(w http.ResponseWriter, r *http.Request) {
	if a.purger == nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": 0})
		return
	}

	n, err := a.purger.InvalidateAll(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("purge page cache failed", zap.Int("deleted", n), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to purge cache", err.Error())
		return
	}
	logger.WithCtx(r.Context()).Info("page cache purged", zap.Int("deleted", n))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": n})
}

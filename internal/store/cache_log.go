// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache_log.go records page cache invalidations in the database for
// audit and debugging purposes. Each entry captures which page path was
// invalidated, when, and why.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"folio/internal/logger"
)

// CacheLogStore handles cache invalidation log operations.
type CacheLogStore struct {
	db *sql.DB
}

// NewCacheLogStore creates a new CacheLogStore.
func NewCacheLogStore(db *sql.DB) *CacheLogStore {
	return &CacheLogStore{db: db}
}

// Log records a cache invalidation event. Failures are logged and
// swallowed; the audit trail never blocks a write.
func (s *CacheLogStore) Log(ctx context.Context, path, reason string) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_invalidation_log (path, reason)
		VALUES ($1, $2)
	`, path, reason)
	if err != nil {
		logger.WithCtx(ctx).Warn("failed to log cache invalidation",
			zap.String("path", path),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return
	}
	logger.WithCtx(ctx).Debug("cache invalidation logged",
		zap.String("path", path),
		zap.String("reason", reason),
	)
}

// RecentEntries returns the most recent cache invalidation events for
// debugging. Limited to the specified count.
func (s *CacheLogStore) RecentEntries(ctx context.Context, limit int) ([]CacheLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, reason, invalidated_at
		FROM cache_invalidation_log
		ORDER BY invalidated_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cache log: %w", err)
	}
	defer rows.Close()

	var entries []CacheLogEntry
	for rows.Next() {
		var e CacheLogEntry
		if err := rows.Scan(&e.ID, &e.Path, &e.Reason, &e.InvalidatedAt); err != nil {
			return nil, fmt.Errorf("scan cache log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CacheLogEntry represents a single cache invalidation event.
type CacheLogEntry struct {
	ID            int64     `json:"id"`
	Path          string    `json:"path"`
	Reason        string    `json:"reason"`
	InvalidatedAt time.Time `json:"invalidatedAt"`
}

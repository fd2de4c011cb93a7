// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed cache for public API responses, keyed
// by the site path the response belongs to ("/writing", "/writing/<slug>").
// Admin writes invalidate those paths so the next request rebuilds them.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"folio/internal/logger"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// Site paths whose cached output depends on stored content.
const (
	PathHome     = "/"
	PathProjects = "/projects"
	PathWriting  = "/writing"
)

// PostPath returns the site path of a single post.
func PostPath(slug string) string {
	return PathWriting + "/" + slug
}

// PageCache manages page caching in Valkey. A nil *PageCache is valid and
// caches nothing, so the site keeps working without Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves the cached body for a path. Returns false on miss.
func (pc *PageCache) Get(ctx context.Context, path string) ([]byte, bool) {
	if pc == nil {
		return nil, false
	}
	val, err := pc.client.Get(ctx, pageKeyPrefix+path).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.WithCtx(ctx).Warn("page cache get error", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	logger.WithCtx(ctx).Debug("page cache hit", zap.String("path", path))
	return val, true
}

// Set stores a rendered body for a path with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, path string, body []byte) {
	if pc == nil {
		return
	}
	if err := pc.client.Set(ctx, pageKeyPrefix+path, body, pc.ttl).Err(); err != nil {
		logger.WithCtx(ctx).Warn("page cache set error", zap.String("path", path), zap.Error(err))
	}
}

// InvalidatePage removes a single path from the cache.
func (pc *PageCache) InvalidatePage(ctx context.Context, path string) error {
	if pc == nil {
		return nil
	}
	return pc.client.Del(ctx, pageKeyPrefix+path).Err()
}

// InvalidateAll removes all cached pages by scanning for the prefix.
func (pc *PageCache) InvalidateAll(ctx context.Context) (int, error) {
	if pc == nil {
		return 0, nil
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		logger.Log.Info("page cache fully cleared", zap.Int("deleted", deleted))
	}
	return deleted, nil
}

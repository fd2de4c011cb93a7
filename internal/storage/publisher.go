// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"folio/internal/logger"
)

// ErrAssetPublishFailed matches any *PublishError.
var ErrAssetPublishFailed = errors.New("asset publish failed")

// PublishError reports which file could not be published.
type PublishError struct {
	File string
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.File, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrAssetPublishFailed) true.
func (e *PublishError) Is(target error) bool { return target == ErrAssetPublishFailed }

// ObjectStore is the subset of Client the Publisher needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	List(ctx context.Context, prefix string) ([]string, error)
	FileURL(key string) string
}

// Asset is one image taken from an upload archive.
type Asset struct {
	Path string // path inside the archive
	Data []byte
}

// Filename returns the bare file name of the asset.
func (a Asset) Filename() string {
	return path.Base(a.Path)
}

const (
	publishConcurrency = 8
	rollbackTimeout    = 30 * time.Second
)

// Publisher uploads post images under <root>/<slug>/<filename>.
type Publisher struct {
	store ObjectStore
	root  string
}

// NewPublisher creates a Publisher writing below root (e.g. "blogs").
func NewPublisher(store ObjectStore, root string) *Publisher {
	return &Publisher{store: store, root: strings.Trim(root, "/")}
}

// Key returns the object key for filename under slug.
func (p *Publisher) Key(slug, filename string) string {
	return path.Join(p.root, slug, filename)
}

// Prefix returns the key prefix holding every asset of slug.
func (p *Publisher) Prefix(slug string) string {
	return path.Join(p.root, slug) + "/"
}

// Publication describes the objects written by one successful Publish.
type Publication struct {
	Slug string
	// Refs maps both the archive path and the bare file name of every
	// asset to its public URL.
	Refs map[string]string
	// Keys holds every object key written.
	Keys []string
	// Created holds the keys that did not exist before the publish. Only
	// these are removed by Discard; overwritten keys stay in place.
	Created []string
}

// Publish uploads every asset concurrently. When any upload fails, the
// objects this call created are deleted before the *PublishError is
// returned; objects it overwrote are left alone so a live post keeps
// resolving.
func (p *Publisher) Publish(ctx context.Context, slug string, assets []Asset) (*Publication, error) {
	log := logger.WithCtx(ctx)
	pub := &Publication{Slug: slug, Refs: make(map[string]string, len(assets)*2)}
	if len(assets) == 0 {
		return pub, nil
	}

	// Two archive entries with the same file name share a key; the later
	// entry wins, matching archive order.
	byKey := make(map[string]Asset, len(assets))
	order := make([]string, 0, len(assets))
	for _, a := range assets {
		key := p.Key(slug, a.Filename())
		if prev, seen := byKey[key]; !seen {
			order = append(order, key)
		} else if prev.Path != a.Path {
			log.Warn("archive images share a file name",
				zap.String("key", key),
				zap.String("kept", a.Path),
				zap.String("shadowed", prev.Path),
			)
		}
		byKey[key] = a
	}

	before := p.existing(ctx, slug)

	var (
		mu        sync.Mutex
		published []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(publishConcurrency)
	for _, key := range order {
		a := byKey[key]
		g.Go(func() error {
			if err := p.store.Upload(gctx, key, ContentType(a.Filename()), a.Data); err != nil {
				return &PublishError{File: a.Path, Err: err}
			}
			mu.Lock()
			published = append(published, key)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.remove(ctx, slug, newKeys(published, before))
		return nil, err
	}

	for _, a := range assets {
		url := p.store.FileURL(p.Key(slug, a.Filename()))
		pub.Refs[a.Path] = url
		pub.Refs[a.Filename()] = url
	}
	pub.Keys = order
	pub.Created = newKeys(order, before)

	log.Info("assets published",
		zap.String("slug", slug),
		zap.Int("count", len(order)),
		zap.Int("created", len(pub.Created)),
	)
	return pub, nil
}

// existing returns the keys already stored under slug, or nil when they
// could not be listed.
func (p *Publisher) existing(ctx context.Context, slug string) map[string]bool {
	keys, err := p.store.List(ctx, p.Prefix(slug))
	if err != nil {
		logger.WithCtx(ctx).Warn("listing existing assets failed",
			zap.String("slug", slug), zap.Error(err))
		return nil
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// newKeys filters keys down to those absent from before. A nil before
// means the prior state is unknown, so nothing counts as new.
func newKeys(keys []string, before map[string]bool) []string {
	if before == nil {
		return nil
	}
	var out []string
	for _, k := range keys {
		if !before[k] {
			out = append(out, k)
		}
	}
	return out
}

// Discard deletes the objects pub created. It is the compensating step
// when the post referencing them could not be saved.
func (p *Publisher) Discard(ctx context.Context, pub *Publication) {
	if pub == nil {
		return
	}
	p.remove(ctx, pub.Slug, pub.Created)
}

// remove deletes keys best-effort. It runs detached from ctx, which may
// already be cancelled.
func (p *Publisher) remove(ctx context.Context, slug string, keys []string) {
	if len(keys) == 0 {
		return
	}
	log := logger.WithCtx(ctx)
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	for _, key := range keys {
		if err := p.store.Delete(rctx, key); err != nil {
			log.Warn("asset rollback failed", zap.String("key", key), zap.Error(err))
		}
	}
	log.Info("assets rolled back", zap.String("slug", slug), zap.Int("count", len(keys)))
}

// Prune deletes every asset under slug whose key is not in keep and
// returns how many were removed.
func (p *Publisher) Prune(ctx context.Context, slug string, keep []string) (int, error) {
	keys, err := p.store.List(ctx, p.Prefix(slug))
	if err != nil {
		return 0, err
	}
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	removed := 0
	for _, key := range keys {
		if kept[key] {
			continue
		}
		if err := p.store.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// RemoveAll deletes every asset stored for slug.
func (p *Publisher) RemoveAll(ctx context.Context, slug string) (int, error) {
	return p.store.DeletePrefix(ctx, p.Prefix(slug))
}

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ContentType returns the MIME type for a file name by extension.
func ContentType(filename string) string {
	if t, ok := contentTypes[strings.ToLower(path.Ext(filename))]; ok {
		return t
	}
	return "application/octet-stream"
}

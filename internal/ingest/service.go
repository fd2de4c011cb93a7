// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ingest turns an uploaded archive plus metadata into a stored
// blog post. One upload runs the whole pipeline: read the archive, publish
// its images, rewrite image references, write the post, then invalidate
// cached pages. Every step fails fast; nothing is retried.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"folio/internal/archive"
	"folio/internal/cache"
	"folio/internal/logger"
	"folio/internal/markdown"
	"folio/internal/models"
	"folio/internal/rewrite"
	"folio/internal/storage"
	"folio/internal/store"
)

// BlogStore is the persistence the pipeline needs.
type BlogStore interface {
	FindByID(ctx context.Context, id int64) (*models.BlogPost, error)
	FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Create(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error)
	Update(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error)
}

// AssetPublisher stores post images on the asset host.
type AssetPublisher interface {
	Publish(ctx context.Context, slug string, assets []storage.Asset) (*storage.Publication, error)
	Discard(ctx context.Context, pub *storage.Publication)
	Prune(ctx context.Context, slug string, keep []string) (int, error)
	RemoveAll(ctx context.Context, slug string) (int, error)
}

// Invalidator marks cached pages stale. It must not block.
type Invalidator interface {
	Invalidate(ctx context.Context, reason string, paths ...string)
}

// UploadRequest is one submission from the admin upload form.
type UploadRequest struct {
	Archive    []byte // nil when no archive was attached
	Metadata   models.BlogMetadata
	EditMode   bool
	ExistingID int64 // post being replaced when EditMode is set
}

// Service runs the upload pipeline.
type Service struct {
	blogs  BlogStore
	assets AssetPublisher
	pages  Invalidator
	limits archive.Limits
}

// NewService creates a Service. limits bounds archive expansion; zero
// fields use archive.DefaultLimits.
func NewService(blogs BlogStore, assets AssetPublisher, pages Invalidator, limits archive.Limits) *Service {
	return &Service{blogs: blogs, assets: assets, pages: pages, limits: limits}
}

// Upload creates or updates a post. It returns the stored post and whether
// it was newly created.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*models.BlogPost, bool, error) {
	log := logger.WithCtx(ctx)

	if !req.EditMode && req.Archive == nil {
		return nil, false, invalid(msgArchiveRequired)
	}
	if req.EditMode && req.ExistingID <= 0 {
		return nil, false, invalid(msgEditIDRequired)
	}

	meta := req.Metadata

	// The archive is read before validation because its front matter may
	// supply metadata. Reading never touches the asset host.
	var contents *archive.Contents
	var body string
	if req.Archive != nil {
		var err error
		contents, body, err = s.readArchive(req.Archive, &meta)
		if err != nil {
			return nil, false, err
		}
	}

	if err := validateMetadata(&meta); err != nil {
		return nil, false, err
	}

	var existing *models.BlogPost
	if req.EditMode {
		p, err := s.blogs.FindByID(ctx, req.ExistingID)
		if err != nil {
			return nil, false, fmt.Errorf("load post %d: %w", req.ExistingID, err)
		}
		if p == nil {
			return nil, false, ErrNotFoundForEdit
		}
		existing = p
	}

	// Fast-path rejection; the unique constraint on write is authoritative.
	same, err := s.blogs.FindBySlug(ctx, meta.Slug)
	if err != nil {
		return nil, false, fmt.Errorf("check slug %q: %w", meta.Slug, err)
	}
	if same != nil && (existing == nil || same.ID != existing.ID) {
		return nil, false, ErrDuplicateSlug
	}

	var (
		content string
		pub     *storage.Publication
	)
	if contents != nil {
		pub, content, err = s.publishAndRewrite(ctx, meta.Slug, contents, body)
		if err != nil {
			return nil, false, err
		}
	} else {
		content = existing.Content
	}

	post := &models.BlogPost{
		Title:       meta.Title,
		Slug:        meta.Slug,
		Excerpt:     meta.Excerpt,
		Content:     content,
		Tags:        normalizeTags(meta.Tags),
		ReadingTime: meta.EffectiveReadingTime(),
		Published:   meta.IsPublished(),
	}

	var saved *models.BlogPost
	if existing != nil {
		post.ID = existing.ID
		saved, err = s.blogs.Update(ctx, post)
		if err == nil && saved == nil {
			err = ErrNotFoundForEdit
		}
	} else {
		saved, err = s.blogs.Create(ctx, post)
	}
	if err != nil {
		// The stored post, if any, still points at its previous assets.
		s.assets.Discard(ctx, pub)
		if errors.Is(err, store.ErrUniqueViolation) {
			return nil, false, fmt.Errorf("%w: %v", ErrDuplicateSlug, err)
		}
		if errors.Is(err, ErrNotFoundForEdit) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("save post %q: %w", post.Slug, err)
	}

	if existing != nil && pub != nil {
		s.removeOldAssets(ctx, existing.Slug, pub)
	}

	paths := []string{cache.PathWriting, cache.PostPath(saved.Slug)}
	reason := "create"
	if existing != nil {
		reason = "update"
		if existing.Slug != saved.Slug {
			paths = append(paths, cache.PostPath(existing.Slug))
		}
	}
	s.pages.Invalidate(ctx, reason, paths...)

	log.Info("blog upload processed",
		zap.Int64("id", saved.ID),
		zap.String("slug", saved.Slug),
		zap.String("action", reason),
		zap.Bool("archive", contents != nil),
	)
	return saved, existing == nil, nil
}

// readArchive collects the archive, strips front matter from the markdown
// and merges it into meta. It returns the markdown body.
func (s *Service) readArchive(data []byte, meta *models.BlogMetadata) (*archive.Contents, string, error) {
	r, err := archive.OpenWithLimits(data, s.limits)
	if err != nil {
		return nil, "", err
	}
	contents, err := archive.Collect(r)
	if err != nil {
		return nil, "", err
	}
	if len(contents.Ignored) > 0 {
		logger.Log.Info("archive entries ignored",
			zap.String("markdown", contents.Markdown.Path),
			zap.Strings("entries", contents.Ignored))
	}

	fm, body, err := markdown.SplitFrontMatter(contents.Markdown.Data)
	if err != nil {
		// Malformed front matter is treated as ordinary markdown.
		logger.Log.Warn("ignoring unreadable front matter",
			zap.String("file", contents.Markdown.Path), zap.Error(err))
		return contents, string(contents.Markdown.Data), nil
	}
	applyFrontMatter(meta, fm)
	return contents, string(body), nil
}

func (s *Service) publishAndRewrite(ctx context.Context, slug string, contents *archive.Contents, body string) (*storage.Publication, string, error) {
	assets := make([]storage.Asset, 0, len(contents.Images))
	for _, img := range contents.Images {
		assets = append(assets, storage.Asset{Path: img.Path, Data: img.Data})
	}

	pub, err := s.assets.Publish(ctx, slug, assets)
	if err != nil {
		return nil, "", err
	}

	refs := pub.Refs
	out := rewrite.Rewrite(body, refs)
	if missing := rewrite.Unresolved(out, refs); len(missing) > 0 {
		logger.WithCtx(ctx).Warn("post references images missing from archive",
			zap.String("slug", slug),
			zap.Strings("references", missing),
		)
	}
	return pub, out, nil
}

// removeOldAssets deletes assets the saved post no longer references:
// the whole old folder after a slug change, otherwise the files the new
// archive did not overwrite. Failure is logged only.
func (s *Service) removeOldAssets(ctx context.Context, oldSlug string, pub *storage.Publication) {
	log := logger.WithCtx(ctx)

	var (
		n   int
		err error
	)
	if oldSlug != pub.Slug {
		n, err = s.assets.RemoveAll(ctx, oldSlug)
	} else {
		n, err = s.assets.Prune(ctx, oldSlug, pub.Keys)
	}
	if err != nil {
		log.Warn("failed to delete old blog assets",
			zap.String("slug", oldSlug), zap.Error(err))
		return
	}
	log.Debug("old blog assets deleted",
		zap.String("slug", oldSlug), zap.Int("count", n))
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"folio/internal/cache"
	"folio/internal/ingest"
	"folio/internal/logger"
	"folio/internal/models"
)

// multipartMemory is how much of a multipart form is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// Blogs groups the admin blog handlers.
type Blogs struct {
	blogs     BlogRepository
	uploader  Uploader
	assets    AssetRemover
	pages     Invalidator
	maxUpload int64
}

// NewBlogs creates the Blogs handler group. uploader and assets may be nil
// when no asset host is configured; uploads then fail with 503.
func NewBlogs(blogs BlogRepository, uploader Uploader, assets AssetRemover, pages Invalidator, maxUpload int64) *Blogs {
	return &Blogs{blogs: blogs, uploader: uploader, assets: assets, pages: pages, maxUpload: maxUpload}
}

// List returns all posts, or only published ones with ?published=true,
// newest first.
func (h *Blogs) List(w http.ResponseWriter, r *http.Request) {
	publishedOnly := r.URL.Query().Get("published") == "true"

	posts, err := h.blogs.List(r.Context(), publishedOnly)
	if err != nil {
		logger.WithCtx(r.Context()).Error("list blogs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch blogs")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Delete removes the post given by ?id=N along with its published images.
func (h *Blogs) Delete(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Blog ID is required")
		return
	}
	id, ok := parseInt64(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid blog ID")
		return
	}

	ctx := r.Context()
	log := logger.WithCtx(ctx)

	deleted, err := h.blogs.Delete(ctx, id)
	if err != nil {
		log.Error("delete blog failed", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete blog")
		return
	}
	if deleted == nil {
		writeError(w, http.StatusNotFound, "Blog not found")
		return
	}

	if h.assets != nil {
		if n, err := h.assets.RemoveAll(ctx, deleted.Slug); err != nil {
			log.Warn("remove blog assets failed", zap.String("slug", deleted.Slug), zap.Error(err))
		} else {
			log.Debug("removed blog assets", zap.String("slug", deleted.Slug), zap.Int("objects", n))
		}
	}

	h.pages.Invalidate(ctx, "delete", cache.PathWriting, cache.PostPath(deleted.Slug))
	log.Info("blog deleted", zap.Int64("id", id), zap.String("slug", deleted.Slug))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// flexID accepts an id sent either as a JSON number or a numeric string.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*f = flexID(id)
	return nil
}

type publishRequest struct {
	ID        flexID `json:"id"`
	Published *bool  `json:"published"`
}

// SetPublished toggles a post's published flag.
func (h *Blogs) SetPublished(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ID <= 0 || req.Published == nil {
		writeError(w, http.StatusBadRequest, "Blog ID and published status are required")
		return
	}

	ctx := r.Context()
	post, err := h.blogs.SetPublished(ctx, int64(req.ID), *req.Published)
	if err != nil {
		logger.WithCtx(ctx).Error("update blog failed", zap.Int64("id", int64(req.ID)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to update blog")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Blog not found")
		return
	}

	reason := "unpublish"
	if post.Published {
		reason = "publish"
	}
	h.pages.Invalidate(ctx, reason, cache.PathWriting, cache.PostPath(post.Slug))
	writeJSON(w, http.StatusOK, post)
}

// Upload runs the ingestion pipeline on a multipart submission with fields
// zipFile, blogData (JSON metadata), editMode and existingBlogId.
func (h *Blogs) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.WithCtx(ctx)

	if h.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "Asset storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if limit, ok := tooLarge(err); ok {
			writeError(w, http.StatusRequestEntityTooLarge,
				"Upload exceeds the "+humanSize(limit)+" limit")
			return
		}
		writeError(w, http.StatusBadRequest, "Expected a multipart form upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := readUploadRequest(r)
	if err != nil {
		if limit, ok := tooLarge(err); ok {
			writeError(w, http.StatusRequestEntityTooLarge,
				"Upload exceeds the "+humanSize(limit)+" limit")
			return
		}
		if ingest.IsUnexpected(err) {
			log.Error("read blog upload failed", zap.Error(err))
		}
		writeError(w, ingest.StatusFor(err), ingest.Message(err))
		return
	}

	post, created, err := h.uploader.Upload(ctx, req)
	if err != nil {
		status := ingest.StatusFor(err)
		fields := []zap.Field{zap.Bool("edit", req.EditMode), zap.String("slug", req.Metadata.Slug), zap.Error(err)}
		if status >= http.StatusInternalServerError {
			log.Error("blog upload failed", fields...)
		} else {
			log.Warn("blog upload rejected", fields...)
		}

		var ve *ingest.ValidationError
		if errors.As(err, &ve) && len(ve.Fields) > 0 {
			writeError(w, status, ingest.Message(err), ve.Fields)
			return
		}
		writeError(w, status, ingest.Message(err))
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, post)
}

// readUploadRequest extracts the pipeline request from a parsed form.
func readUploadRequest(r *http.Request) (ingest.UploadRequest, error) {
	req := ingest.UploadRequest{EditMode: r.FormValue("editMode") == "true"}

	blogData := r.FormValue("blogData")
	if blogData == "" {
		msg := "Zip file and blog data are required"
		if req.EditMode {
			msg = "Blog data is required"
		}
		return req, &ingest.ValidationError{Message: msg}
	}

	var meta models.BlogMetadata
	if err := json.NewDecoder(strings.NewReader(blogData)).Decode(&meta); err != nil {
		return req, &ingest.ValidationError{Message: "Blog data is not valid JSON"}
	}
	req.Metadata = meta

	if raw := r.FormValue("existingBlogId"); raw != "" {
		id, ok := parseInt64(raw)
		if !ok {
			return req, &ingest.ValidationError{Message: "Invalid blog id"}
		}
		req.ExistingID = id
	}

	file, _, err := r.FormFile("zipFile")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, nil
	case err != nil:
		return req, fmt.Errorf("read zipFile: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return req, fmt.Errorf("read zipFile: %w", err)
	}
	if buf.Len() > 0 {
		req.Archive = buf.Bytes()
	}
	return req, nil
}

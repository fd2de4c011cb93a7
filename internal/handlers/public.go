// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"folio/internal/cache"
	"folio/internal/logger"
	"folio/internal/markdown"
	"folio/internal/models"
	"folio/internal/slug"
)

// PlaceholderImage is where project image requests go when a project has
// no image of its own.
const PlaceholderImage = "/placeholder.svg"

// Public groups the read-only endpoints used by the portfolio frontend.
// JSON responses are cached in the page cache under the site path they
// feed, so admin invalidations of that path refresh them.
type Public struct {
	blogs      BlogRepository
	projects   ProjectRepository
	experience ExperienceService
	pages      PageStore
	resumeURL  string
}

// NewPublic creates the Public handler group. pages may be a nil
// *cache.PageCache to disable caching.
func NewPublic(blogs BlogRepository, projects ProjectRepository, experience ExperienceService, pages PageStore, resumeURL string) *Public {
	return &Public{
		blogs:      blogs,
		projects:   projects,
		experience: experience,
		pages:      pages,
		resumeURL:  resumeURL,
	}
}

// postResponse is a published post with its rendered body.
type postResponse struct {
	*models.BlogPost
	HTML string `json:"html"`
}

// Blogs lists published posts without their content, newest first.
func (p *Public) Blogs(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, cache.PathWriting, func() (any, int, error) {
		posts, err := p.blogs.List(r.Context(), true)
		if err != nil {
			return nil, 0, err
		}
		out := make([]models.BlogSummary, 0, len(posts))
		for i := range posts {
			out = append(out, posts[i].Summary())
		}
		return out, http.StatusOK, nil
	})
}

// Blog returns one published post with its markdown rendered to HTML.
func (p *Public) Blog(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.Valid(s) {
		writeError(w, http.StatusNotFound, "Blog not found")
		return
	}

	p.cached(w, r, cache.PostPath(s), func() (any, int, error) {
		post, err := p.blogs.FindPublishedBySlug(r.Context(), s)
		if err != nil {
			return nil, 0, err
		}
		if post == nil {
			return errorBody{Error: "Blog not found"}, http.StatusNotFound, nil
		}
		html, err := markdown.ToHTML(post.Content)
		if err != nil {
			return nil, 0, err
		}
		return postResponse{BlogPost: post, HTML: html}, http.StatusOK, nil
	})
}

// Projects lists projects in display order, each with its image URL.
func (p *Public) Projects(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, cache.PathProjects, func() (any, int, error) {
		projects, err := p.projects.List(r.Context())
		if err != nil {
			return nil, 0, err
		}
		for i := range projects {
			projects[i].WithSrc()
		}
		return projects, http.StatusOK, nil
	})
}

// ProjectImage serves a project's stored image bytes.
func (p *Public) ProjectImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}

	data, mime, found, err := p.projects.Image(r.Context(), id)
	if err != nil {
		logger.WithCtx(r.Context()).Error("load project image failed", zap.Stringer("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if len(data) == 0 {
		http.Redirect(w, r, PlaceholderImage, http.StatusFound)
		return
	}
	if mime == "" {
		mime = "image/webp"
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	// SVGs are served from our origin; keep scripts inside them inert.
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; sandbox")
	_, _ = w.Write(data)
}

// Resume returns the public URL of the current resume.
func (p *Public) Resume(w http.ResponseWriter, r *http.Request) {
	if p.resumeURL == "" {
		writeError(w, http.StatusNotFound, "No resume available")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"url":     p.resumeURL,
		"message": "Current resume URL",
	})
}

// Experience returns the cached work-experience payload.
func (p *Public) Experience(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if body, ok := p.pages.Get(ctx, cache.PathHome); ok {
		w.Header().Set("X-Cache", "HIT")
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	payload, err := p.experience.Current(ctx)
	if err != nil {
		logger.WithCtx(ctx).Error("load experience failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch experience")
		return
	}
	p.pages.Set(ctx, cache.PathHome, payload)
	w.Header().Set("X-Cache", "MISS")
	writeRawJSON(w, http.StatusOK, payload)
}

// cached serves path from the page cache, or builds, stores and serves it.
// Only 200 responses are cached.
func (p *Public) cached(w http.ResponseWriter, r *http.Request, path string, build func() (any, int, error)) {
	ctx := r.Context()
	if body, ok := p.pages.Get(ctx, path); ok {
		w.Header().Set("X-Cache", "HIT")
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	data, status, err := build()
	if err != nil {
		logger.WithCtx(ctx).Error("build public response failed", zap.String("path", path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	body, err := encodeJSON(data)
	if err != nil {
		logger.WithCtx(ctx).Error("encode public response failed", zap.String("path", path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if status == http.StatusOK {
		p.pages.Set(ctx, path, body)
	}
	w.Header().Set("X-Cache", "MISS")
	writeRawJSON(w, status, body)
}

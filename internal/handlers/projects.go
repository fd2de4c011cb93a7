// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"folio/internal/cache"
	"folio/internal/imaging"
	"folio/internal/logger"
	"folio/internal/models"
	"folio/internal/store"
)

const msgProjectFields = "Title, description, and link are required"

// Projects groups the admin project handlers.
type Projects struct {
	projects ProjectRepository
	pages    Invalidator
	maxImage int64
}

// NewProjects creates the Projects handler group. maxImage bounds image
// uploads in bytes.
func NewProjects(projects ProjectRepository, pages Invalidator, maxImage int64) *Projects {
	return &Projects{projects: projects, pages: pages, maxImage: maxImage}
}

// imageUpload is an image attached to a create or update request.
type imageUpload struct {
	data     []byte
	declared string
}

// List returns all projects in display order.
func (h *Projects) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("list projects failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch projects")
		return
	}
	for i := range projects {
		projects[i].WithSrc()
	}
	writeJSON(w, http.StatusOK, projects)
}

// Get returns one project.
func (h *Projects) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	p, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		logger.WithCtx(r.Context()).Error("find project failed", zap.Stringer("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, p.WithSrc())
}

// Create adds a project at the end of the display order. The body is
// either JSON or a multipart form with a "project" JSON field and an
// optional "image" file.
func (h *Projects) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in, img, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	p, err := h.projects.Create(ctx, in)
	if err != nil {
		logger.WithCtx(ctx).Error("create project failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}
	if img != nil {
		if p, ok = h.storeImage(w, r, p.ID, img); !ok {
			return
		}
	}

	h.pages.Invalidate(ctx, "project-create", cache.PathHome, cache.PathProjects)
	writeJSON(w, http.StatusCreated, p.WithSrc())
}

// Update replaces a project's fields and, when one is attached, its image.
func (h *Projects) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	in, img, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	p, err := h.projects.Update(ctx, id, in)
	if err != nil {
		logger.WithCtx(ctx).Error("update project failed", zap.Stringer("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to update project")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if img != nil {
		if p, ok = h.storeImage(w, r, id, img); !ok {
			return
		}
	}

	h.pages.Invalidate(ctx, "project-update", cache.PathHome, cache.PathProjects)
	writeJSON(w, http.StatusOK, p.WithSrc())
}

// Delete removes a project.
func (h *Projects) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	deleted, err := h.projects.Delete(ctx, id)
	if err != nil {
		logger.WithCtx(ctx).Error("delete project failed", zap.Stringer("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}

	h.pages.Invalidate(ctx, "project-delete", cache.PathHome, cache.PathProjects)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SetImage stores the raw request body as the project image. The
// Content-Type header is only trusted for SVG; raster formats are sniffed.
func (h *Projects) SetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImage)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		if limit, big := tooLarge(err); big {
			writeError(w, http.StatusRequestEntityTooLarge, "Image exceeds the "+humanSize(limit)+" limit")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	if _, ok := h.storeImage(w, r, id, &imageUpload{data: data, declared: r.Header.Get("Content-Type")}); !ok {
		return
	}
	h.pages.Invalidate(r.Context(), "project-image", cache.PathHome, cache.PathProjects)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteImage removes the project image.
func (h *Projects) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	p, err := h.projects.SetImage(ctx, id, nil, "")
	if err != nil {
		logger.WithCtx(ctx).Error("clear project image failed", zap.Stringer("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to remove image")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	h.pages.Invalidate(ctx, "project-image", cache.PathHome, cache.PathProjects)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type reorderRequest struct {
	ProjectIDs []string `json:"projectIds"`
}

// Reorder sets the display order to the order of projectIds.
func (h *Projects) Reorder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ProjectIDs == nil {
		writeError(w, http.StatusBadRequest, "projectIds must be an array")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.ProjectIDs))
	seen := make(map[uuid.UUID]bool, len(req.ProjectIDs))
	for _, raw := range req.ProjectIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid project ID: "+raw)
			return
		}
		if seen[id] {
			writeError(w, http.StatusBadRequest, "Duplicate project ID: "+raw)
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if err := h.projects.Reorder(ctx, ids); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		logger.WithCtx(ctx).Error("reorder projects failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to reorder projects")
		return
	}

	h.pages.Invalidate(ctx, "project-reorder", cache.PathHome, cache.PathProjects)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// readPayload decodes and validates a project body. It writes the error
// response itself and returns ok=false on failure.
func (h *Projects) readPayload(w http.ResponseWriter, r *http.Request) (models.ProjectInput, *imageUpload, bool) {
	var in models.ProjectInput
	var img *imageUpload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxImage+maxJSONBody)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			if limit, big := tooLarge(err); big {
				writeError(w, http.StatusRequestEntityTooLarge, "Upload exceeds the "+humanSize(limit)+" limit")
				return in, nil, false
			}
			writeError(w, http.StatusBadRequest, "Expected a multipart form upload")
			return in, nil, false
		}
		defer r.MultipartForm.RemoveAll()

		raw := r.FormValue("project")
		if raw == "" {
			writeError(w, http.StatusBadRequest, "Project data is required")
			return in, nil, false
		}
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			writeError(w, http.StatusBadRequest, "Project data is not valid JSON")
			return in, nil, false
		}

		file, header, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			writeError(w, http.StatusBadRequest, "Failed to read image")
			return in, nil, false
		default:
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Failed to read image")
				return in, nil, false
			}
			if len(data) > 0 {
				img = &imageUpload{data: data, declared: header.Header.Get("Content-Type")}
			}
		}
	} else if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return in, nil, false
	}

	if fields := validateProject(&in); fields != nil {
		writeError(w, http.StatusBadRequest, msgProjectFields, fields)
		return in, nil, false
	}
	return in, img, true
}

// storeImage normalises and saves an image. It writes the error response
// itself and returns ok=false on failure.
func (h *Projects) storeImage(w http.ResponseWriter, r *http.Request, id uuid.UUID, img *imageUpload) (*models.Project, bool) {
	ctx := r.Context()
	res, err := imaging.Process(img.data, img.declared)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported image format")
		return nil, false
	}
	if res.Resized {
		logger.WithCtx(ctx).Info("project image downscaled",
			zap.Stringer("id", id), zap.Int("width", res.Width), zap.Int("height", res.Height))
	}

	p, err := h.projects.SetImage(ctx, id, res.Data, res.MIME)
	if err != nil {
		logger.WithCtx(ctx).Error("save project image failed", zap.Stringer("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to upload image")
		return nil, false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Project not found")
		return nil, false
	}
	return p, true
}

// validateProject trims the text fields and returns per-field errors.
func validateProject(in *models.ProjectInput) map[string]string {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Link = strings.TrimSpace(in.Link)
	in.Time = strings.TrimSpace(in.Time)

	err := validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.Link, validation.Required, is.URL),
	)
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for field, e := range errs {
		out[field] = e.Error()
	}
	return out
}

func projectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return uuid.Nil, false
	}
	return id, true
}

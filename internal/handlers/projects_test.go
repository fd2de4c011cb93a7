// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/google/uuid"

	"folio/internal/models"
)

const validProject = `{"title":"Folio","description":"A portfolio","link":"https://example.com","tags":["go"]}`

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func TestProjectsCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{"valid", validProject, http.StatusCreated, ""},
		{"missing title", `{"description":"d","link":"https://example.com"}`, http.StatusBadRequest, "title"},
		{"blank description", `{"title":"t","description":"   ","link":"https://example.com"}`, http.StatusBadRequest, "description"},
		{"bad link", `{"title":"t","description":"d","link":"not a url"}`, http.StatusBadRequest, "link"},
		{"not json", `{`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := &fakeProjects{}
			pages := newFakePages()
			h := NewProjects(projects, pages, 1<<20)

			rr := httptest.NewRecorder()
			h.Create(rr, jsonRequest(t, http.MethodPost, "/admin/api/projects", tt.body))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body)
			}

			if tt.wantStatus != http.StatusCreated {
				if len(projects.projects) != 0 {
					t.Error("invalid project must not be stored")
				}
				if tt.wantField == "" {
					return
				}
				body := decodeBody[struct {
					Error   string            `json:"error"`
					Details map[string]string `json:"details"`
				}](t, rr)
				if body.Error != msgProjectFields {
					t.Errorf("error: got %q", body.Error)
				}
				if body.Details[tt.wantField] == "" {
					t.Errorf("details missing %q: %+v", tt.wantField, body.Details)
				}
				return
			}

			got := decodeBody[models.Project](t, rr)
			if got.Title != "Folio" || got.Src != nil || len(got.Features) != 0 || got.Features == nil {
				t.Errorf("created: %+v", got)
			}
			if !slices.Equal(pages.invalidated, []string{"/", "/projects"}) {
				t.Errorf("invalidated: %v", pages.invalidated)
			}
		})
	}
}

func TestProjectsCreateMultipartWithImage(t *testing.T) {
	projects := &fakeProjects{}
	h := NewProjects(projects, newFakePages(), 1<<20)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("project", validProject)
	fw, _ := mw.CreateFormFile("image", "cover.png")
	fw.Write(testPNG(t, 40, 20))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/api/projects", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body)
	}
	got := decodeBody[models.Project](t, rr)
	if got.Src == nil {
		t.Fatal("project with image should have a src")
	}
	if p := projects.projects[0]; p.ImageMime == nil || *p.ImageMime != "image/png" {
		t.Errorf("stored mime: %v", p.ImageMime)
	}
}

func TestProjectsGetUpdateDelete(t *testing.T) {
	existing := models.Project{ID: uuid.New(), Title: "Old", Description: "d", Link: "https://example.com"}
	projects := &fakeProjects{projects: []models.Project{existing}}
	pages := newFakePages()
	h := NewProjects(projects, pages, 1<<20)
	id := existing.ID.String()

	rr := httptest.NewRecorder()
	h.Get(rr, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "id", id))
	if rr.Code != http.StatusOK {
		t.Fatalf("get: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Get(rr, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "id", "bogus"))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("get invalid id: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Update(rr, withURLParams(jsonRequest(t, http.MethodPut, "/", validProject), "id", id))
	if rr.Code != http.StatusOK || decodeBody[models.Project](t, rr).Title != "Folio" {
		t.Fatalf("update: %d %s", rr.Code, rr.Body)
	}

	rr = httptest.NewRecorder()
	h.Update(rr, withURLParams(jsonRequest(t, http.MethodPut, "/", validProject), "id", uuid.NewString()))
	if rr.Code != http.StatusNotFound {
		t.Errorf("update unknown: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Delete(rr, withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "id", id))
	if rr.Code != http.StatusOK || len(projects.projects) != 0 {
		t.Fatalf("delete: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Delete(rr, withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "id", id))
	if rr.Code != http.StatusNotFound {
		t.Errorf("delete twice: %d", rr.Code)
	}

	if !slices.Equal(pages.reasons, []string{"project-update", "project-delete"}) {
		t.Errorf("reasons: %v", pages.reasons)
	}
}

func TestProjectsSetImage(t *testing.T) {
	existing := models.Project{ID: uuid.New(), Title: "P"}
	projects := &fakeProjects{projects: []models.Project{existing}}
	h := NewProjects(projects, newFakePages(), 1<<20)
	id := existing.ID.String()

	put := func(id string, body []byte, ct string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(body))
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		h.SetImage(rr, withURLParams(req, "id", id))
		return rr
	}

	if rr := put(id, testPNG(t, 10, 10), "image/png"); rr.Code != http.StatusOK {
		t.Fatalf("png: %d %s", rr.Code, rr.Body)
	}
	if !projects.projects[0].HasImage {
		t.Error("image not stored")
	}

	if rr := put(id, []byte("plain text"), "image/png"); rr.Code != http.StatusBadRequest {
		t.Errorf("garbage: got %d, want 400", rr.Code)
	}
	if rr := put(uuid.NewString(), testPNG(t, 10, 10), "image/png"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown project: got %d, want 404", rr.Code)
	}

	small := NewProjects(projects, newFakePages(), 64)
	req := httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(testPNG(t, 200, 200)))
	rr := httptest.NewRecorder()
	small.SetImage(rr, withURLParams(req, "id", id))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized: got %d, want 413", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.DeleteImage(rr, withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "id", id))
	if rr.Code != http.StatusOK || projects.projects[0].HasImage {
		t.Errorf("delete image: %d", rr.Code)
	}
}

func TestProjectsReorder(t *testing.T) {
	a := models.Project{ID: uuid.New(), Title: "A", SortOrder: 0}
	b := models.Project{ID: uuid.New(), Title: "B", SortOrder: 1}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"swap", fmt.Sprintf(`{"projectIds":[%q,%q]}`, b.ID, a.ID), http.StatusOK},
		{"not an array", `{"projectIds":"x"}`, http.StatusBadRequest},
		{"missing", `{}`, http.StatusBadRequest},
		{"invalid id", `{"projectIds":["nope"]}`, http.StatusBadRequest},
		{"duplicate", fmt.Sprintf(`{"projectIds":[%q,%q]}`, a.ID, a.ID), http.StatusBadRequest},
		{"unknown", fmt.Sprintf(`{"projectIds":[%q]}`, uuid.New()), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := &fakeProjects{projects: []models.Project{a, b}}
			h := NewProjects(projects, newFakePages(), 1<<20)

			rr := httptest.NewRecorder()
			h.Reorder(rr, jsonRequest(t, http.MethodPut, "/admin/api/projects/reorder", tt.body))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body)
			}
			if rr.Code == http.StatusOK {
				list, _ := projects.List(t.Context())
				if list[0].ID != b.ID {
					t.Errorf("order not applied: %+v", list)
				}
			}
		})
	}
}

func TestProjectsStoreErrors(t *testing.T) {
	h := NewProjects(&fakeProjects{err: errBoom}, newFakePages(), 1<<20)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("list: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Create(rr, jsonRequest(t, http.MethodPost, "/", validProject))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("create: %d", rr.Code)
	}

}

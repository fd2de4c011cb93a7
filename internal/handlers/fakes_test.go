// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"folio/internal/ingest"
	"folio/internal/models"
	"folio/internal/store"
)

var errBoom = errors.New("boom")

// fakeBlogs is an in-memory BlogRepository.
type fakeBlogs struct {
	posts []models.BlogPost
	err   error
	calls int
}

func (f *fakeBlogs) List(_ context.Context, publishedOnly bool) ([]models.BlogPost, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := []models.BlogPost{}
	for _, p := range f.posts {
		if !publishedOnly || p.Published {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeBlogs) FindPublishedBySlug(_ context.Context, slug string) (*models.BlogPost, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.posts {
		if f.posts[i].Slug == slug && f.posts[i].Published {
			p := f.posts[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeBlogs) SetPublished(_ context.Context, id int64, published bool) (*models.BlogPost, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts[i].Published = published
			p := f.posts[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeBlogs) Delete(_ context.Context, id int64) (*models.BlogPost, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.posts {
		if f.posts[i].ID == id {
			p := f.posts[i]
			f.posts = slices.Delete(f.posts, i, i+1)
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeBlogs) Count(context.Context) (int, int, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	published := 0
	for _, p := range f.posts {
		if p.Published {
			published++
		}
	}
	return len(f.posts), published, nil
}

// fakeProjects is an in-memory ProjectRepository.
type fakeProjects struct {
	projects []models.Project
	err      error
}

func (f *fakeProjects) find(id uuid.UUID) int {
	return slices.IndexFunc(f.projects, func(p models.Project) bool { return p.ID == id })
}

func (f *fakeProjects) List(context.Context) ([]models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := slices.Clone(f.projects)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeProjects) FindByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	if i := f.find(id); i >= 0 {
		p := f.projects[i]
		return &p, nil
	}
	return nil, nil
}

func (f *fakeProjects) Image(_ context.Context, id uuid.UUID) ([]byte, string, bool, error) {
	if f.err != nil {
		return nil, "", false, f.err
	}
	i := f.find(id)
	if i < 0 {
		return nil, "", false, nil
	}
	p := f.projects[i]
	mime := ""
	if p.ImageMime != nil {
		mime = *p.ImageMime
	}
	return p.ImageBytes, mime, true, nil
}

func (f *fakeProjects) Create(_ context.Context, in models.ProjectInput) (*models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	in.Normalize()
	p := models.Project{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Features:    in.Features,
		Time:        in.Time,
		Tags:        in.Tags,
		Highlights:  in.Highlights,
		Challenges:  in.Challenges,
		Link:        in.Link,
		SortOrder:   len(f.projects),
	}
	f.projects = append(f.projects, p)
	return &p, nil
}

func (f *fakeProjects) Update(_ context.Context, id uuid.UUID, in models.ProjectInput) (*models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	i := f.find(id)
	if i < 0 {
		return nil, nil
	}
	p := &f.projects[i]
	p.Title, p.Description, p.Link = in.Title, in.Description, in.Link
	out := *p
	return &out, nil
}

func (f *fakeProjects) SetImage(_ context.Context, id uuid.UUID, data []byte, mime string) (*models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	i := f.find(id)
	if i < 0 {
		return nil, nil
	}
	p := &f.projects[i]
	p.ImageBytes = data
	p.HasImage = len(data) > 0
	p.ImageMime = nil
	if mime != "" {
		p.ImageMime = &mime
	}
	out := *p
	return &out, nil
}

func (f *fakeProjects) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	i := f.find(id)
	if i < 0 {
		return false, nil
	}
	f.projects = slices.Delete(f.projects, i, i+1)
	return true, nil
}

func (f *fakeProjects) Reorder(_ context.Context, ids []uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	for _, id := range ids {
		if f.find(id) < 0 {
			return store.ErrNotFound
		}
	}
	for order, id := range ids {
		f.projects[f.find(id)].SortOrder = order
	}
	return nil
}

func (f *fakeProjects) Count(context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.projects), nil
}

// fakePages is both a PageStore and an Invalidator. Invalidate drops the
// paths synchronously so tests can observe the effect.
type fakePages struct {
	mu          sync.Mutex
	bodies      map[string][]byte
	invalidated []string
	reasons     []string
}

func newFakePages() *fakePages {
	return &fakePages{bodies: map[string][]byte{}}
}

func (f *fakePages) Get(_ context.Context, path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bodies[path]
	return b, ok
}

func (f *fakePages) Set(_ context.Context, path string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[path] = body
}

func (f *fakePages) Invalidate(_ context.Context, reason string, paths ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, reason)
	for _, p := range paths {
		delete(f.bodies, p)
		f.invalidated = append(f.invalidated, p)
	}
}

func (f *fakePages) InvalidateAll(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.bodies)
	f.bodies = map[string][]byte{}
	return n, nil
}

// fakeUploader records the request and returns a canned result.
type fakeUploader struct {
	got     *ingest.UploadRequest
	post    *models.BlogPost
	created bool
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, req ingest.UploadRequest) (*models.BlogPost, bool, error) {
	f.got = &req
	return f.post, f.created, f.err
}

type fakeAssets struct {
	removed []string
}

func (f *fakeAssets) RemoveAll(_ context.Context, slug string) (int, error) {
	f.removed = append(f.removed, slug)
	return 2, nil
}

type fakeExperience struct {
	payload json.RawMessage
	err     error
}

func (f *fakeExperience) Refresh(context.Context) (*models.ExperienceCache, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ExperienceCache{ID: models.ExperienceCacheID, Payload: f.payload, UpdatedAt: time.Now()}, nil
}

func (f *fakeExperience) Current(context.Context) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.payload == nil {
		return json.RawMessage("[]"), nil
	}
	return f.payload, nil
}

type fakeCacheLog struct {
	entries  []store.CacheLogEntry
	gotLimit int
	err      error
}

func (f *fakeCacheLog) RecentEntries(_ context.Context, limit int) ([]store.CacheLogEntry, error) {
	f.gotLimit = limit
	return f.entries, f.err
}

// fakeObjects is an in-memory ResumeStore.
type fakeObjects struct {
	objects   map[string][]byte
	uploadErr error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeObjects) Copy(_ context.Context, src, dst string) error {
	data, ok := f.objects[src]
	if !ok {
		return errors.New("no such key")
	}
	f.objects[dst] = bytes.Clone(data)
	return nil
}

func (f *fakeObjects) Upload(_ context.Context, key, _ string, data []byte) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjects) FileURL(key string) string {
	return "https://assets.example.com/" + key
}

// withURLParams attaches chi route params to r.
func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[errorBody](t, rr).Error
}

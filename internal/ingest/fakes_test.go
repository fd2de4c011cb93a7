// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"folio/internal/models"
	"folio/internal/storage"
	"folio/internal/store"
)

// memBlogs is an in-memory BlogStore that enforces slug uniqueness on
// write, like the real table.
type memBlogs struct {
	mu      sync.Mutex
	nextID  int64
	posts   map[int64]*models.BlogPost
	creates int
	updates int
}

func newMemBlogs() *memBlogs {
	return &memBlogs{nextID: 1, posts: map[int64]*models.BlogPost{}}
}

func (m *memBlogs) seed(p models.BlogPost) *models.BlogPost {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID
	m.nextID++
	m.posts[p.ID] = &p
	return &p
}

func (m *memBlogs) FindByID(ctx context.Context, id int64) (*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (m *memBlogs) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.Slug == slug {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memBlogs) slugTaken(slug string, except int64) bool {
	for _, p := range m.posts {
		if p.Slug == slug && p.ID != except {
			return true
		}
	}
	return false
}

func (m *memBlogs) Create(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(p.Slug, 0) {
		return nil, store.ErrUniqueViolation
	}
	c := *p
	c.ID = m.nextID
	m.nextID++
	c.Date = time.Now()
	c.UpdatedAt = c.Date
	m.posts[c.ID] = &c
	m.creates++
	out := c
	return &out, nil
}

func (m *memBlogs) Update(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.posts[p.ID]
	if !ok {
		return nil, nil
	}
	if m.slugTaken(p.Slug, p.ID) {
		return nil, store.ErrUniqueViolation
	}
	c := *p
	c.Date = old.Date
	c.UpdatedAt = time.Now()
	m.posts[c.ID] = &c
	m.updates++
	out := c
	return &out, nil
}

// fakeAssets records publisher calls and can be told to fail. stored
// holds the live objects by slug/filename.
type fakeAssets struct {
	mu        sync.Mutex
	publish   int
	removed   []string
	pruned    []string
	discarded []string
	stored    map[string]bool
	files     []string
	failWith  error
}

func (f *fakeAssets) Publish(ctx context.Context, slug string, assets []storage.Asset) (*storage.Publication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publish++
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.stored == nil {
		f.stored = map[string]bool{}
	}
	pub := &storage.Publication{Slug: slug, Refs: map[string]string{}}
	for _, a := range assets {
		key := slug + "/" + a.Filename()
		url := "https://cdn.example/blogs/" + key
		pub.Refs[a.Path] = url
		pub.Refs[a.Filename()] = url
		pub.Keys = append(pub.Keys, key)
		if !f.stored[key] {
			pub.Created = append(pub.Created, key)
		}
		f.stored[key] = true
		f.files = append(f.files, key)
	}
	return pub, nil
}

func (f *fakeAssets) Discard(ctx context.Context, pub *storage.Publication) {
	if pub == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range pub.Created {
		delete(f.stored, key)
		f.discarded = append(f.discarded, key)
	}
}

func (f *fakeAssets) Prune(ctx context.Context, slug string, keep []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruned = append(f.pruned, slug)
	n := 0
	for key := range f.stored {
		if strings.HasPrefix(key, slug+"/") && !slices.Contains(keep, key) {
			delete(f.stored, key)
			n++
		}
	}
	return n, nil
}

func (f *fakeAssets) RemoveAll(ctx context.Context, slug string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, slug)
	n := 0
	for key := range f.stored {
		if strings.HasPrefix(key, slug+"/") {
			delete(f.stored, key)
			n++
		}
	}
	return n, nil
}

type fakePages struct {
	mu      sync.Mutex
	paths   []string
	reasons []string
}

func (f *fakePages) Invalidate(ctx context.Context, reason string, paths ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reasons = append(f.reasons, reason)
	f.paths = append(f.paths, paths...)
}

type zipFile struct {
	name string
	body string
}

func buildZip(t *testing.T, files ...zipFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		w.Write([]byte(f.body))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

type harness struct {
	blogs  *memBlogs
	assets *fakeAssets
	pages  *fakePages
	svc    *Service
}

func newHarness() *harness {
	h := &harness{blogs: newMemBlogs(), assets: &fakeAssets{}, pages: &fakePages{}}
	h.svc = NewService(h.blogs, h.assets, h.pages, testLimits)
	return h
}

func meta(title, slug, excerpt string) models.BlogMetadata {
	return models.BlogMetadata{Title: title, Slug: slug, Excerpt: excerpt}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

var errBoom = errors.New("boom")

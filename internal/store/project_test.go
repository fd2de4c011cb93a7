// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"folio/internal/models"
)

func TestProjectStoreCreateAppends(t *testing.T) {
	db := testDB(t)
	s := NewProjectStore(db)
	ctx := context.Background()

	t.Cleanup(func() { cleanProjects(t, db, "store-test-first", "store-test-second") })

	first, err := s.Create(ctx, models.ProjectInput{Title: "store-test-first", Description: "d", Link: "https://a"})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := s.Create(ctx, models.ProjectInput{Title: "store-test-second", Description: "d", Link: "https://b"})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if second.SortOrder != first.SortOrder+1 {
		t.Errorf("sort order: first %d, second %d", first.SortOrder, second.SortOrder)
	}
	if first.Features == nil || len(first.Features) != 0 {
		t.Errorf("features should default to empty, got %v", first.Features)
	}
	if first.Src != nil {
		t.Error("project without image should have nil src")
	}
}

func TestProjectStoreImage(t *testing.T) {
	db := testDB(t)
	s := NewProjectStore(db)
	ctx := context.Background()

	t.Cleanup(func() { cleanProjects(t, db, "store-test-image") })

	p, err := s.Create(ctx, models.ProjectInput{Title: "store-test-image", Description: "d", Link: "https://x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if data, _, found, err := s.Image(ctx, p.ID); !found || data != nil || err != nil {
		t.Fatalf("Image before upload: found=%v data=%v err=%v", found, data, err)
	}
	if _, _, found, err := s.Image(ctx, uuid.New()); found || err != nil {
		t.Fatalf("Image of unknown project: found=%v err=%v", found, err)
	}

	withImage, err := s.SetImage(ctx, p.ID, []byte{0x89, 'P', 'N', 'G'}, "image/png")
	if err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	if withImage.Src == nil || *withImage.Src != p.ImagePath() {
		t.Errorf("src after SetImage: got %v", withImage.Src)
	}

	data, mime, found, err := s.Image(ctx, p.ID)
	if err != nil || !found {
		t.Fatalf("Image: found=%v err=%v", found, err)
	}
	if mime != "image/png" || len(data) != 4 {
		t.Errorf("Image: mime %q, %d bytes", mime, len(data))
	}

	cleared, err := s.SetImage(ctx, p.ID, nil, "")
	if err != nil {
		t.Fatalf("SetImage(nil): %v", err)
	}
	if cleared.Src != nil {
		t.Error("src should be nil after clearing the image")
	}
}

func TestProjectStoreReorder(t *testing.T) {
	db := testDB(t)
	s := NewProjectStore(db)
	ctx := context.Background()

	t.Cleanup(func() { cleanProjects(t, db, "store-test-r1", "store-test-r2") })

	a, _ := s.Create(ctx, models.ProjectInput{Title: "store-test-r1", Description: "d", Link: "l"})
	b, _ := s.Create(ctx, models.ProjectInput{Title: "store-test-r2", Description: "d", Link: "l"})
	if a == nil || b == nil {
		t.Fatal("Create failed")
	}

	if err := s.Reorder(ctx, []uuid.UUID{b.ID, a.ID}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	gotA, _ := s.FindByID(ctx, a.ID)
	gotB, _ := s.FindByID(ctx, b.ID)
	if gotB.SortOrder != 0 || gotA.SortOrder != 1 {
		t.Errorf("after reorder: a=%d b=%d", gotA.SortOrder, gotB.SortOrder)
	}

	// An unknown id aborts the whole reorder.
	err := s.Reorder(ctx, []uuid.UUID{a.ID, uuid.New()})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Reorder unknown id: got %v, want ErrNotFound", err)
	}
	gotA, _ = s.FindByID(ctx, a.ID)
	if gotA.SortOrder != 1 {
		t.Errorf("failed reorder was not rolled back: a=%d", gotA.SortOrder)
	}
}

func TestProjectStoreUpdateDelete(t *testing.T) {
	db := testDB(t)
	s := NewProjectStore(db)
	ctx := context.Background()

	t.Cleanup(func() { cleanProjects(t, db, "store-test-upd", "store-test-upd2") })

	p, err := s.Create(ctx, models.ProjectInput{Title: "store-test-upd", Description: "d", Link: "l"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := s.Update(ctx, p.ID, models.ProjectInput{
		Title: "store-test-upd2", Description: "d2", Link: "l2", Tags: []string{"go"},
	})
	if err != nil || updated == nil {
		t.Fatalf("Update: %v, %v", updated, err)
	}
	if updated.Title != "store-test-upd2" || len(updated.Tags) != 1 || updated.SortOrder != p.SortOrder {
		t.Errorf("Update: got %+v", updated)
	}

	if missing, err := s.Update(ctx, uuid.New(), models.ProjectInput{Title: "x", Description: "d", Link: "l"}); missing != nil || err != nil {
		t.Errorf("Update missing: %v, %v", missing, err)
	}

	ok, err := s.Delete(ctx, p.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: %v, %v", ok, err)
	}
	if ok, _ := s.Delete(ctx, p.ID); ok {
		t.Error("second Delete should report false")
	}
}

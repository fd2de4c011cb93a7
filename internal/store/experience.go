// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"folio/internal/models"
)

// ExperienceStore persists the cached work-experience payload.
type ExperienceStore struct {
	db *sql.DB
}

// NewExperienceStore creates a new ExperienceStore.
func NewExperienceStore(db *sql.DB) *ExperienceStore {
	return &ExperienceStore{db: db}
}

// Get returns the cached payload, or nil if it was never refreshed.
func (s *ExperienceStore) Get(ctx context.Context) (*models.ExperienceCache, error) {
	e := &models.ExperienceCache{}
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, payload, updated_at FROM experience_cache WHERE id = $1
	`, models.ExperienceCacheID).Scan(&e.ID, &payload, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get experience cache: %w", err)
	}
	e.Payload = json.RawMessage(payload)
	return e, nil
}

// Upsert replaces the cached payload. payload must be valid JSON.
func (s *ExperienceStore) Upsert(ctx context.Context, payload json.RawMessage) (*models.ExperienceCache, error) {
	if !json.Valid(payload) {
		return nil, fmt.Errorf("upsert experience cache: payload is not valid JSON")
	}

	e := &models.ExperienceCache{}
	var stored []byte
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO experience_cache (id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
		RETURNING id, payload, updated_at
	`, models.ExperienceCacheID, []byte(payload)).Scan(&e.ID, &stored, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert experience cache: %w", err)
	}
	e.Payload = json.RawMessage(stored)
	return e, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"folio/internal/models"
)

// Image bytes are never selected by listing queries; HasImage is derived.
const projectColumns = `id, title, description, features, time, tags,
	highlights, challenges, link, sort_order, image_mime,
	image_bytes IS NOT NULL, created_at, updated_at`

// ProjectStore handles all project-related database operations.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a new ProjectStore.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var features, tags, highlights, challenges stringList
	if err := row.Scan(
		&p.ID, &p.Title, &p.Description, &features, &p.Time, &tags,
		&highlights, &challenges, &p.Link, &p.SortOrder, &p.ImageMime,
		&p.HasImage, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Features = features
	p.Tags = tags
	p.Highlights = highlights
	p.Challenges = challenges
	return p.WithSrc(), nil
}

// List returns all projects in display order.
func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		ORDER BY sort_order ASC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// FindByID retrieves a project by its UUID. Returns nil if not found.
func (s *ProjectStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	return p, nil
}

// Image returns the stored image bytes and MIME type. found is false when
// the project does not exist; data is nil when it exists without an image.
func (s *ProjectStore) Image(ctx context.Context, id uuid.UUID) (data []byte, mime string, found bool, err error) {
	var mimeType sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT image_bytes, image_mime FROM projects WHERE id = $1`, id,
	).Scan(&data, &mimeType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("find project image: %w", err)
	}
	if data == nil {
		return nil, "", true, nil
	}
	mime = mimeType.String
	if mime == "" {
		mime = "application/octet-stream"
	}
	return data, mime, true, nil
}

// Create inserts a project after the current last one.
func (s *ProjectStore) Create(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	in.Normalize()
	p, err := scanProject(s.db.QueryRowContext(ctx, `
		INSERT INTO projects (title, description, features, time, tags,
		                      highlights, challenges, link, sort_order)
		SELECT $1::text, $2::text, $3::jsonb, $4::text, $5::jsonb, $6::jsonb, $7::jsonb, $8::text,
		       COALESCE(MAX(sort_order), -1) + 1
		FROM projects
		RETURNING `+projectColumns,
		in.Title, in.Description, stringList(in.Features), in.Time, stringList(in.Tags),
		stringList(in.Highlights), stringList(in.Challenges), in.Link,
	))
	if err != nil {
		return nil, wrapWriteErr("create project", err)
	}
	return p, nil
}

// Update replaces the writable fields of a project. Returns nil if the
// project does not exist.
func (s *ProjectStore) Update(ctx context.Context, id uuid.UUID, in models.ProjectInput) (*models.Project, error) {
	in.Normalize()
	p, err := scanProject(s.db.QueryRowContext(ctx, `
		UPDATE projects SET
			title = $2, description = $3, features = $4, time = $5, tags = $6,
			highlights = $7, challenges = $8, link = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING `+projectColumns,
		id, in.Title, in.Description, stringList(in.Features), in.Time, stringList(in.Tags),
		stringList(in.Highlights), stringList(in.Challenges), in.Link,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapWriteErr("update project", err)
	}
	return p, nil
}

// SetImage stores image bytes for a project. A nil data slice removes the
// image. Returns nil if the project does not exist.
func (s *ProjectStore) SetImage(ctx context.Context, id uuid.UUID, data []byte, mime string) (*models.Project, error) {
	var mimeArg any
	if data != nil {
		mimeArg = mime
	}
	p, err := scanProject(s.db.QueryRowContext(ctx, `
		UPDATE projects SET image_bytes = $2, image_mime = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+projectColumns, id, data, mimeArg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set project image: %w", err)
	}
	return p, nil
}

// Delete removes a project. It reports whether a row was deleted.
func (s *ProjectStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete project rows: %w", err)
	}
	return n > 0, nil
}

// Reorder assigns sort_order by position in ids, in one transaction. An
// unknown id rolls back the whole reorder and returns ErrNotFound.
func (s *ProjectStore) Reorder(ctx context.Context, ids []uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reorder begin: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		res, err := tx.ExecContext(ctx,
			`UPDATE projects SET sort_order = $2, updated_at = NOW() WHERE id = $1`, id, i)
		if err != nil {
			return fmt.Errorf("reorder project %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("reorder project %s: %w", id, ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("reorder commit: %w", err)
	}
	return nil
}

// Count returns the number of projects.
func (s *ProjectStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"folio/internal/models"
)

const blogColumns = `id, title, slug, excerpt, content, tags, reading_time,
	published, date, updated_at`

// BlogStore handles all blog post database operations.
type BlogStore struct {
	db *sql.DB
}

// NewBlogStore creates a new BlogStore with the given database connection.
func NewBlogStore(db *sql.DB) *BlogStore {
	return &BlogStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlog(row rowScanner) (*models.BlogPost, error) {
	p := &models.BlogPost{}
	var tags stringList
	if err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &tags,
		&p.ReadingTime, &p.Published, &p.Date, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Tags = tags
	return p, nil
}

// List returns posts newest first. When publishedOnly is set, drafts are
// left out.
func (s *BlogStore) List(ctx context.Context, publishedOnly bool) ([]models.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts`
	if publishedOnly {
		query += ` WHERE published = TRUE`
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	defer rows.Close()

	posts := []models.BlogPost{}
	for rows.Next() {
		p, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// FindByID retrieves a post by id. Returns nil if not found.
func (s *BlogStore) FindByID(ctx context.Context, id int64) (*models.BlogPost, error) {
	p, err := scanBlog(s.db.QueryRowContext(ctx,
		`SELECT `+blogColumns+` FROM blog_posts WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find blog post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by slug regardless of its publication state.
// Returns nil if not found.
func (s *BlogStore) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	p, err := scanBlog(s.db.QueryRowContext(ctx,
		`SELECT `+blogColumns+` FROM blog_posts WHERE slug = $1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find blog post by slug: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug is FindBySlug restricted to published posts. Used by
// the public API.
func (s *BlogStore) FindPublishedBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	p, err := scanBlog(s.db.QueryRowContext(ctx,
		`SELECT `+blogColumns+` FROM blog_posts WHERE slug = $1 AND published = TRUE`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find published blog post: %w", err)
	}
	return p, nil
}

// Create inserts a new post and returns the stored row. A slug collision
// returns an error matching ErrUniqueViolation.
func (s *BlogStore) Create(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	created, err := scanBlog(s.db.QueryRowContext(ctx, `
		INSERT INTO blog_posts (title, slug, excerpt, content, tags, reading_time, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+blogColumns,
		p.Title, p.Slug, p.Excerpt, p.Content, stringList(p.Tags), p.ReadingTime, p.Published,
	))
	if err != nil {
		return nil, wrapWriteErr("create blog post", err)
	}
	return created, nil
}

// Update overwrites every mutable field of the post with p.ID and returns
// the stored row. Returns nil if the post no longer exists.
func (s *BlogStore) Update(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	updated, err := scanBlog(s.db.QueryRowContext(ctx, `
		UPDATE blog_posts SET
			title = $2, slug = $3, excerpt = $4, content = $5, tags = $6,
			reading_time = $7, published = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING `+blogColumns,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, stringList(p.Tags), p.ReadingTime, p.Published,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapWriteErr("update blog post", err)
	}
	return updated, nil
}

// SetPublished flips the publication flag. Returns nil if not found.
func (s *BlogStore) SetPublished(ctx context.Context, id int64, published bool) (*models.BlogPost, error) {
	p, err := scanBlog(s.db.QueryRowContext(ctx, `
		UPDATE blog_posts SET published = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+blogColumns, id, published))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set blog post published: %w", err)
	}
	return p, nil
}

// Delete removes a post and returns the deleted row, or nil if there was
// nothing to delete.
func (s *BlogStore) Delete(ctx context.Context, id int64) (*models.BlogPost, error) {
	p, err := scanBlog(s.db.QueryRowContext(ctx,
		`DELETE FROM blog_posts WHERE id = $1 RETURNING `+blogColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete blog post: %w", err)
	}
	return p, nil
}

// Count returns the total number of posts and how many are published.
func (s *BlogStore) Count(ctx context.Context) (total, published int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE published)
		FROM blog_posts
	`).Scan(&total, &published)
	if err != nil {
		return 0, 0, fmt.Errorf("count blog posts: %w", err)
	}
	return total, published, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ingest

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"folio/internal/markdown"
	"folio/internal/models"
	"folio/internal/slug"
)

// applyFrontMatter fills fields the caller left empty from the post's
// front matter. Caller-supplied values always win.
func applyFrontMatter(meta *models.BlogMetadata, fm markdown.FrontMatter) {
	if strings.TrimSpace(meta.Title) == "" {
		meta.Title = fm.Title
	}
	if strings.TrimSpace(meta.Slug) == "" {
		meta.Slug = fm.Slug
		if meta.Slug == "" && meta.Title != "" {
			meta.Slug = slug.Generate(meta.Title)
		}
	}
	if strings.TrimSpace(meta.Excerpt) == "" {
		meta.Excerpt = fm.Summary()
	}
	if len(meta.Tags) == 0 {
		meta.Tags = fm.Tags
	}
	if meta.ReadingTime == nil && fm.ReadingTime > 0 {
		rt := fm.ReadingTime
		meta.ReadingTime = &rt
	}
	if meta.Published == nil && fm.Published != nil {
		p := *fm.Published
		meta.Published = &p
	}
}

// validateMetadata trims the text fields and checks the required ones.
func validateMetadata(meta *models.BlogMetadata) error {
	meta.Title = strings.TrimSpace(meta.Title)
	meta.Slug = strings.TrimSpace(meta.Slug)
	meta.Excerpt = strings.TrimSpace(meta.Excerpt)

	err := validation.ValidateStruct(meta,
		validation.Field(&meta.Title, validation.Required),
		validation.Field(&meta.Slug, validation.Required),
		validation.Field(&meta.Excerpt, validation.Required),
	)
	if err != nil {
		return &ValidationError{Message: msgFieldsRequired, Fields: fieldErrors(err)}
	}

	err = validation.Validate(meta.Slug, validation.By(func(v any) error {
		if !slug.Valid(v.(string)) {
			return errors.New(msgInvalidSlug)
		}
		return nil
	}))
	if err != nil {
		return &ValidationError{Message: msgInvalidSlug, Fields: map[string]string{"slug": err.Error()}}
	}
	return nil
}

func fieldErrors(err error) map[string]string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	out := make(map[string]string, len(errs))
	for field, e := range errs {
		out[field] = e.Error()
	}
	return out
}

// normalizeTags trims tags, drops empty ones and removes duplicates while
// keeping the first occurrence's position. The result is never nil.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

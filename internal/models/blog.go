// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultReadingTime is used when a post is saved without a positive
// reading-time estimate.
const DefaultReadingTime = 5

// BlogPost is a markdown article on the writing section of the site. Body
// holds markdown whose image references already point at the asset host.
type BlogPost struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content,omitempty"`
	Tags        []string  `json:"tags"`
	ReadingTime int       `json:"readingTime"`
	Published   bool      `json:"published"`
	Date        time.Time `json:"date"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BlogSummary is the listing view of a post, without the body.
type BlogSummary struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Tags        []string  `json:"tags"`
	ReadingTime int       `json:"readingTime"`
	Published   bool      `json:"published"`
	Date        time.Time `json:"date"`
}

// Summary returns the listing view of the post.
func (p *BlogPost) Summary() BlogSummary {
	return BlogSummary{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Tags:        p.Tags,
		ReadingTime: p.ReadingTime,
		Published:   p.Published,
		Date:        p.Date,
	}
}

// BlogMetadata is the JSON blob submitted alongside an archive upload.
// ReadingTime and Published are pointers so "absent" can be told apart
// from zero values when applying defaults.
type BlogMetadata struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Excerpt     string   `json:"excerpt"`
	ReadingTime *int     `json:"readingTime,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Published   *bool    `json:"published,omitempty"`
}

// UnmarshalJSON decodes the metadata leniently: readingTime may be a
// number or a numeric string, fractions are truncated, and anything else
// is treated as absent.
func (m *BlogMetadata) UnmarshalJSON(b []byte) error {
	type plain BlogMetadata
	aux := struct {
		*plain
		ReadingTime json.RawMessage `json:"readingTime"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	m.ReadingTime = parseReadingTime(aux.ReadingTime)
	return nil
}

func parseReadingTime(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	v := int(f)
	return &v
}

// EffectiveReadingTime returns the submitted reading time, or
// DefaultReadingTime when it is missing or not positive.
func (m *BlogMetadata) EffectiveReadingTime() int {
	if m.ReadingTime == nil || *m.ReadingTime <= 0 {
		return DefaultReadingTime
	}
	return *m.ReadingTime
}

// IsPublished returns the publish flag, defaulting to false.
func (m *BlogMetadata) IsPublished() bool {
	return m.Published != nil && *m.Published
}

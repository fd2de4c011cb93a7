// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"testing"
	"time"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

// TestEffectiveReadingTime verifies the default applies to absent and
// non-positive values only.
func TestEffectiveReadingTime(t *testing.T) {
	tests := []struct {
		name string
		in   *int
		want int
	}{
		{name: "absent", in: nil, want: DefaultReadingTime},
		{name: "zero", in: intPtr(0), want: DefaultReadingTime},
		{name: "negative", in: intPtr(-3), want: DefaultReadingTime},
		{name: "explicit", in: intPtr(12), want: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &BlogMetadata{ReadingTime: tt.in}
			if got := m.EffectiveReadingTime(); got != tt.want {
				t.Errorf("EffectiveReadingTime() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBlogMetadataReadingTimeDecode(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{`{}`, nil},
		{`{"readingTime":null}`, nil},
		{`{"readingTime":9}`, intPtr(9)},
		{`{"readingTime":3.9}`, intPtr(3)},
		{`{"readingTime":" 4 "}`, intPtr(4)},
		{`{"readingTime":"four"}`, nil},
		{`{"readingTime":[1]}`, nil},
		{`{"readingTime":1e300}`, nil},
		{`{"readingTime":-2}`, intPtr(-2)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var m BlogMetadata
			if err := json.Unmarshal([]byte(tt.raw), &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			switch {
			case tt.want == nil && m.ReadingTime != nil:
				t.Errorf("got %d, want absent", *m.ReadingTime)
			case tt.want != nil && (m.ReadingTime == nil || *m.ReadingTime != *tt.want):
				t.Errorf("got %v, want %d", m.ReadingTime, *tt.want)
			}
		})
	}

	var m BlogMetadata
	if err := json.Unmarshal([]byte(`{"title":"T","readingTime":"x","published":true}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Title != "T" || !m.IsPublished() || m.EffectiveReadingTime() != DefaultReadingTime {
		t.Errorf("other fields lost: %+v", m)
	}
}

func TestIsPublishedDefaultsFalse(t *testing.T) {
	if (&BlogMetadata{}).IsPublished() {
		t.Error("absent published flag should be false")
	}
	if (&BlogMetadata{Published: boolPtr(false)}).IsPublished() {
		t.Error("explicit false should be false")
	}
	if !(&BlogMetadata{Published: boolPtr(true)}).IsPublished() {
		t.Error("explicit true should be true")
	}
}

// TestBlogMetadataDecode checks the JSON field names the admin client sends.
func TestBlogMetadataDecode(t *testing.T) {
	raw := `{"title":"Hi","slug":"hi","excerpt":"e","readingTime":7,"tags":["go"],"published":true}`
	var m BlogMetadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Title != "Hi" || m.Slug != "hi" || m.Excerpt != "e" {
		t.Errorf("text fields: got %+v", m)
	}
	if m.EffectiveReadingTime() != 7 || !m.IsPublished() || len(m.Tags) != 1 {
		t.Errorf("optional fields: got %+v", m)
	}
}

func TestBlogPostSummaryDropsContent(t *testing.T) {
	p := &BlogPost{ID: 3, Title: "T", Slug: "t", Content: "# body", Tags: []string{"a"}, Date: time.Now()}
	s := p.Summary()
	if s.ID != 3 || s.Slug != "t" || len(s.Tags) != 1 {
		t.Errorf("Summary: got %+v", s)
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	_ = json.Unmarshal(out, &fields)
	if _, ok := fields["content"]; ok {
		t.Error("summary JSON should not carry content")
	}
}

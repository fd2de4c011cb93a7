// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestProjectWithSrc(t *testing.T) {
	id := uuid.MustParse("3f1c0a1e-7d36-4c8a-9a53-2c3f1f0b8a11")

	p := &Project{ID: id, HasImage: true}
	p.WithSrc()
	if p.Src == nil || *p.Src != "/api/projects/"+id.String()+"/image" {
		t.Errorf("Src: got %v", p.Src)
	}

	p.HasImage = false
	p.WithSrc()
	if p.Src != nil {
		t.Errorf("Src should be nil without an image, got %q", *p.Src)
	}
}

func TestProjectInputNormalize(t *testing.T) {
	in := ProjectInput{Title: "x", Tags: []string{"go"}}
	in.Normalize()

	out, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	_ = json.Unmarshal(out, &fields)
	for _, key := range []string{"features", "highlights", "challenges"} {
		list, ok := fields[key].([]any)
		if !ok || len(list) != 0 {
			t.Errorf("%s: got %v, want []", key, fields[key])
		}
	}
	if len(in.Tags) != 1 {
		t.Errorf("existing tags should be kept, got %v", in.Tags)
	}
}

func TestProjectImageBytesNotEncoded(t *testing.T) {
	p := &Project{ImageBytes: []byte{1, 2, 3}}
	out, _ := json.Marshal(p)
	var fields map[string]any
	_ = json.Unmarshal(out, &fields)
	if _, ok := fields["ImageBytes"]; ok {
		t.Error("image bytes must not be part of the JSON body")
	}
}

func TestExperienceCount(t *testing.T) {
	tests := []struct {
		payload string
		want    int
	}{
		{`[{"title":"a"},{"title":"b"}]`, 2},
		{`[]`, 0},
		{`{"items":[]}`, 0},
		{`not json`, 0},
	}
	for _, tt := range tests {
		e := &ExperienceCache{Payload: json.RawMessage(tt.payload)}
		if got := e.Count(); got != tt.want {
			t.Errorf("Count(%s) = %d, want %d", tt.payload, got, tt.want)
		}
	}
}

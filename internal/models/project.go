// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Project is a portfolio entry shown on the projects page. The cover image
// is stored inline as bytes and served by the API.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Features    []string  `json:"features"`
	Time        string    `json:"time"`
	Tags        []string  `json:"tags"`
	Highlights  []string  `json:"highlights"`
	Challenges  []string  `json:"challenges"`
	Link        string    `json:"link"`
	SortOrder   int       `json:"sortOrder"`
	ImageBytes  []byte    `json:"-"`
	ImageMime   *string   `json:"imageMime,omitempty"`
	HasImage    bool      `json:"-"`
	Src         *string   `json:"src"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ImagePath returns the public path that serves the project's image.
func (p *Project) ImagePath() string {
	return fmt.Sprintf("/api/projects/%s/image", p.ID)
}

// WithSrc fills Src with the image path when the project has an image.
func (p *Project) WithSrc() *Project {
	if p.HasImage {
		src := p.ImagePath()
		p.Src = &src
	} else {
		p.Src = nil
	}
	return p
}

// ProjectInput is the writable subset of a project.
type ProjectInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Time        string   `json:"time"`
	Tags        []string `json:"tags"`
	Highlights  []string `json:"highlights"`
	Challenges  []string `json:"challenges"`
	Link        string   `json:"link"`
}

// Normalize replaces nil lists with empty ones so they encode as [].
func (in *ProjectInput) Normalize() {
	for _, list := range []*[]string{&in.Features, &in.Tags, &in.Highlights, &in.Challenges} {
		if *list == nil {
			*list = []string{}
		}
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the optional metadata block at the top of a post.
type FrontMatter struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Excerpt     string   `yaml:"excerpt"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	ReadingTime int      `yaml:"readingTime"`
	Published   *bool    `yaml:"published"`
}

// Summary returns the excerpt, falling back to the description.
func (fm FrontMatter) Summary() string {
	if fm.Excerpt != "" {
		return fm.Excerpt
	}
	return fm.Description
}

// SplitFrontMatter separates a leading YAML front matter block from the
// Markdown body. Sources without front matter come back unchanged with a
// zero FrontMatter.
func SplitFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &fm)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return fm, body, nil
}

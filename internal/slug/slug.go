// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation and validation for
// blog posts.
package slug

import (
	"strings"

	goslug "github.com/goliatone/go-slug"
)

// MaxLength bounds slugs so asset keys and URLs stay readable.
const MaxLength = 120

// Generate creates a URL-friendly slug from the given string. It returns
// "" when nothing usable remains.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	out, err := goslug.Normalize(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	if len(out) > MaxLength {
		out = strings.TrimRight(out[:MaxLength], "-_")
	}
	return out
}

// Valid reports whether s is already a well-formed slug. Slugs name
// asset folders, so path separators and dot segments are never valid.
func Valid(s string) bool {
	if s == "" || len(s) > MaxLength {
		return false
	}
	if strings.ContainsAny(s, "/\\") || strings.Contains(s, "..") {
		return false
	}
	return goslug.IsValid(s)
}

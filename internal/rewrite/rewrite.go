// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package rewrite replaces local image references in markdown with the
// URLs the images were published under.
//
// Both markdown image syntax and raw HTML <img> tags are handled. A
// reference may name the image by its path inside the archive or by its
// bare file name, with or without a leading "./".
package rewrite

import (
	"cmp"
	"path"
	"regexp"
	"slices"
	"strings"
)

// Rewrite returns markdown with every reference found in refs replaced by
// its URL. Alt text, optional titles and other <img> attributes are kept.
// References to paths missing from refs are left untouched.
func Rewrite(markdown string, refs map[string]string) string {
	if len(refs) == 0 || markdown == "" {
		return markdown
	}

	for _, key := range sortedKeys(refs) {
		url := refs[key]
		target := targetPattern(key)

		md := regexp.MustCompile(`!\[([^\]]*)\]\(\s*(?:` + target + `)((?:\s+(?:"[^"]*"|'[^']*'))?)\s*\)`)
		markdown = md.ReplaceAllString(markdown, "![${1}]("+escapeTemplate(url)+"${2})")

		src := regexp.MustCompile(`(\s)src\s*=\s*["'](?:` + target + `)["']`)
		img := regexp.MustCompile(`<img\b[^>]*?\ssrc\s*=\s*["'](?:` + target + `)["'][^>]*>`)
		markdown = img.ReplaceAllStringFunc(markdown, func(tag string) string {
			return src.ReplaceAllString(tag, `${1}src="`+escapeTemplate(url)+`"`)
		})
	}
	return markdown
}

var (
	mdImage  = regexp.MustCompile(`!\[[^\]]*\]\(\s*([^)\s]+)`)
	htmlSrc  = regexp.MustCompile(`<img\b[^>]*?\ssrc\s*=\s*["']([^"']+)["']`)
	hasProto = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
)

// Unresolved lists local image references in markdown that have no entry
// in refs, in order of first appearance. Absolute URLs, data URIs and
// site-rooted paths are not local.
func Unresolved(markdown string, refs map[string]string) []string {
	var out []string
	seen := make(map[string]bool)

	check := func(target string) {
		if seen[target] || !isLocal(target) {
			return
		}
		seen[target] = true
		clean := strings.TrimPrefix(target, "./")
		if _, ok := refs[clean]; ok {
			return
		}
		if _, ok := refs[target]; ok {
			return
		}
		out = append(out, target)
	}

	for _, m := range mdImage.FindAllStringSubmatch(markdown, -1) {
		check(m[1])
	}
	for _, m := range htmlSrc.FindAllStringSubmatch(markdown, -1) {
		check(m[1])
	}
	return out
}

func isLocal(target string) bool {
	return target != "" &&
		!strings.HasPrefix(target, "/") &&
		!strings.HasPrefix(target, "#") &&
		!hasProto.MatchString(target)
}

// targetPattern builds the alternation of every spelling of key: the
// path itself and the bare file name, each with or without "./".
func targetPattern(key string) string {
	forms := []string{key, path.Base(key)}
	var alts []string
	for _, f := range slices.Compact(forms) {
		q := regexp.QuoteMeta(strings.TrimPrefix(f, "./"))
		alts = append(alts, `\./`+q, q)
	}
	return strings.Join(alts, "|")
}

// sortedKeys orders keys longest first so a full path is rewritten before
// its bare file name, and ties break alphabetically for stable output.
func sortedKeys(refs map[string]string) []string {
	keys := make([]string, 0, len(refs))
	for k := range refs {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return keys
}

// escapeTemplate protects "$" in replacement text from regexp expansion.
func escapeTemplate(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

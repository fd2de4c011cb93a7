// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package archive reads the zip archives submitted for blog uploads. An
// archive holds one markdown document plus the images it references.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"path"
	"strings"

	"github.com/docker/go-units"
	"go.uber.org/zap"

	"folio/internal/logger"
)

var (
	// ErrMalformedArchive is returned when the upload is not a readable zip.
	ErrMalformedArchive = errors.New("malformed archive")
	// ErrMissingContent is returned when the archive has no markdown file.
	ErrMissingContent = errors.New("no markdown file found in archive")
	// ErrConsumed is yielded when Entries is iterated a second time.
	ErrConsumed = errors.New("archive entries already consumed")
)

// Kind classifies an archive entry by file extension.
type Kind int

const (
	KindOther Kind = iota
	KindMarkdown
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindMarkdown:
		return "markdown"
	case KindImage:
		return "image"
	default:
		return "other"
	}
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".webp": true, ".svg": true,
}

// Classify returns the Kind for an archive path. macOS resource forks are
// always KindOther.
func Classify(name string) Kind {
	if strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), "._") {
		return KindOther
	}
	ext := strings.ToLower(path.Ext(name))
	switch {
	case ext == ".md" || ext == ".markdown":
		return KindMarkdown
	case imageExts[ext]:
		return KindImage
	default:
		return KindOther
	}
}

// Entry is one file read from the archive.
type Entry struct {
	Path string
	Data []byte
	Kind Kind
}

// Limits bounds how much data an archive may expand to.
type Limits struct {
	MaxEntrySize int64 // largest single uncompressed file
	MaxTotalSize int64 // sum of all uncompressed files
}

// DefaultLimits guards against zip bombs while leaving room for image-heavy posts.
var DefaultLimits = Limits{
	MaxEntrySize: 25 * units.MB,
	MaxTotalSize: 200 * units.MB,
}

// Reader iterates over the files in an uploaded archive.
type Reader struct {
	zr       *zip.Reader
	limits   Limits
	consumed bool
}

// Open parses data as a zip archive using DefaultLimits.
func Open(data []byte) (*Reader, error) {
	return OpenWithLimits(data, DefaultLimits)
}

// OpenWithLimits parses data as a zip archive. A zero limit field falls
// back to the matching DefaultLimits value.
func OpenWithLimits(data []byte, limits Limits) (*Reader, error) {
	if limits.MaxEntrySize <= 0 {
		limits.MaxEntrySize = DefaultLimits.MaxEntrySize
	}
	if limits.MaxTotalSize <= 0 {
		limits.MaxTotalSize = DefaultLimits.MaxTotalSize
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	return &Reader{zr: zr, limits: limits}, nil
}

// Entries yields every file in archive order, skipping directories. The
// sequence can be ranged over once; later iterations yield ErrConsumed.
// Iteration stops after the first error.
func (r *Reader) Entries() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		if r.consumed {
			yield(Entry{}, ErrConsumed)
			return
		}
		r.consumed = true

		var total int64
		for _, f := range r.zr.File {
			if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
				continue
			}

			data, err := r.read(f, r.limits.MaxTotalSize-total)
			if err != nil {
				yield(Entry{}, err)
				return
			}
			total += int64(len(data))

			if !yield(Entry{Path: f.Name, Data: data, Kind: Classify(f.Name)}, nil) {
				return
			}
		}
	}
}

func (r *Reader) read(f *zip.File, remaining int64) ([]byte, error) {
	limit := min(r.limits.MaxEntrySize, remaining)
	if f.UncompressedSize64 > uint64(max(limit, 0)) {
		return nil, r.tooLarge(f.Name, limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrMalformedArchive, f.Name, err)
	}
	defer rc.Close()

	// The header size can lie; cap the actual read as well.
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrMalformedArchive, f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, r.tooLarge(f.Name, limit)
	}
	return data, nil
}

func (r *Reader) tooLarge(name string, limit int64) error {
	return fmt.Errorf("%w: %s exceeds %s uncompressed",
		ErrMalformedArchive, name, units.HumanSize(float64(max(limit, 0))))
}

// Contents is the classified content of an archive.
type Contents struct {
	Markdown Entry
	Images   []Entry
	Ignored  []string
}

// Collect drains r and returns the markdown document and all images. An
// archive without markdown fails with ErrMissingContent. When several
// markdown files are present the last one in archive order is used.
func Collect(r *Reader) (*Contents, error) {
	c := &Contents{}
	var markdown []string

	for e, err := range r.Entries() {
		if err != nil {
			return nil, err
		}
		switch e.Kind {
		case KindMarkdown:
			c.Markdown = e
			markdown = append(markdown, e.Path)
		case KindImage:
			c.Images = append(c.Images, e)
		default:
			c.Ignored = append(c.Ignored, e.Path)
		}
	}

	if len(markdown) == 0 {
		return nil, ErrMissingContent
	}
	if len(markdown) > 1 {
		logger.Log.Warn("archive has several markdown files, using the last",
			zap.Strings("markdown", markdown),
			zap.String("used", c.Markdown.Path),
		)
	}
	return c, nil
}

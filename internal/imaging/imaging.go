// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalises project cover images before they are stored.
// Images wider than MaxWidth are downscaled and re-encoded as JPEG; smaller
// images and SVGs are kept byte for byte.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MaxWidth is the widest image stored without resizing.
	MaxWidth = 1600
	// JPEGQuality is used when a resized image is re-encoded.
	JPEGQuality = 85
)

// ErrUnsupported is returned for data that is neither a decodable raster
// image nor an SVG document.
var ErrUnsupported = errors.New("imaging: unsupported image")

// Result is a processed image ready for storage.
type Result struct {
	Data    []byte
	MIME    string
	Width   int // 0 for SVG
	Height  int
	Resized bool
}

var formatMIME = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Process inspects data and downscales it when wider than MaxWidth.
// declared is the client's Content-Type; it is only trusted for SVG.
func Process(data []byte, declared string) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnsupported)
	}
	if isSVG(data, declared) {
		return &Result{Data: data, MIME: "image/svg+xml"}, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	mime, ok := formatMIME[format]
	if !ok {
		return nil, fmt.Errorf("%w: format %q", ErrUnsupported, format)
	}

	if cfg.Width <= MaxWidth {
		return &Result{Data: data, MIME: mime, Width: cfg.Width, Height: cfg.Height}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	out, w, h, err := downscale(src, MaxWidth)
	if err != nil {
		return nil, err
	}
	return &Result{Data: out, MIME: "image/jpeg", Width: w, Height: h, Resized: true}, nil
}

// downscale resizes src to width, keeping the aspect ratio, and encodes
// the result as JPEG. Transparent areas are flattened onto white.
func downscale(src image.Image, width int) ([]byte, int, int, error) {
	b := src.Bounds()
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, 0, 0, fmt.Errorf("imaging: encode jpeg: %w", err)
	}
	return buf.Bytes(), width, height, nil
}

func isSVG(data []byte, declared string) bool {
	if strings.HasPrefix(strings.ToLower(declared), "image/svg") {
		return true
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	sniffed := http.DetectContentType(head)
	if !strings.HasPrefix(sniffed, "text/") {
		return false
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging bounds uploaded images before they reach object storage.
// Images larger than the maximum dimension are scaled down preserving
// aspect ratio and re-encoded as JPEG at a fixed quality, capping storage
// and transfer cost. Videos pass through this package untouched.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	_ "image/gif"  // register GIF decoder
	_ "image/png"  // register PNG decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MaxDimension bounds both width and height of stored images.
	MaxDimension = 1280

	// Quality is the JPEG quality for re-encoded images.
	Quality = 80

	// maxImagePixels caps decoded size to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000
)

// Result is a processed image ready for upload.
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Resize decodes an image, scales it to fit within MaxDimension on both
// axes preserving aspect ratio, and re-encodes it as JPEG. Images already
// within bounds are still re-encoded so every stored image shares one
// format and quality.
func Resize(src io.ReadSeeker) (*Result, error) {
	imgCfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("imaging: decode config: %w", err)
	}

	if int64(imgCfg.Width)*int64(imgCfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("imaging: image too large: %dx%d exceeds %d pixels",
			imgCfg.Width, imgCfg.Height, maxImagePixels)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("imaging: seek: %w", err)
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	width, height := fit(img.Bounds().Dx(), img.Bounds().Dy(), MaxDimension)

	out := img
	if width != img.Bounds().Dx() || height != img.Bounds().Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("imaging: encode: %w", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       width,
		Height:      height,
	}, nil
}

// fit scales (w, h) down so both sides fit within max, preserving aspect
// ratio. Dimensions already within bounds are returned unchanged.
func fit(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w > max {
		h = h * max / w
		w = max
	}
	if h > max {
		w = w * max / h
		h = max
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

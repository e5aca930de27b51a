// Package testutil provides shared fakes and helpers for the engine's
// tests: a counting in-memory imaging implementation and manifest/source
// file builders.
package testutil

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"
	"sync/atomic"

	"github.com/vk/imagesetgo/internal/imaging"
)

// FakeLoader is an imaging.Loader that fabricates images without touching
// pixel data. It counts loads and encodes so tests can assert how often the
// expensive collaborator actually ran.
type FakeLoader struct {
	// Format/Width/Height describe every fabricated source.
	Format imaging.Format
	Width  int
	Height int

	// LoadErr, when set, fails every Load call.
	LoadErr error
	// BytesErr, when set, fails every encode.
	BytesErr error

	// Loads counts Load invocations; Encodes counts Bytes invocations.
	Loads   atomic.Int64
	Encodes atomic.Int64
}

// NewFakeLoader fabricates sources with sensible defaults.
func NewFakeLoader() *FakeLoader {
	return &FakeLoader{Format: imaging.FormatPNG, Width: 1600, Height: 900}
}

// Load implements imaging.Loader.
func (l *FakeLoader) Load(_ context.Context, path string) (imaging.Image, error) {
	l.Loads.Add(1)
	if l.LoadErr != nil {
		return nil, l.LoadErr
	}
	return &FakeImage{
		loader: l,
		path:   path,
		format: l.Format,
		width:  l.Width,
		height: l.Height,
	}, nil
}

// FakeImage records the operation chain applied to it. Bytes serializes
// the chain, so distinct transforms yield distinct output bytes.
type FakeImage struct {
	loader *FakeLoader
	path   string
	format imaging.Format
	encode imaging.EncodeOptions
	width  int
	height int
	ops    []string
}

func (f *FakeImage) clone() *FakeImage {
	next := *f
	next.ops = append(f.ops[:len(f.ops):len(f.ops)])
	return &next
}

// Metadata implements imaging.Image.
func (f *FakeImage) Metadata() (imaging.Metadata, error) {
	return imaging.Metadata{Format: f.format, Width: f.width, Height: f.height}, nil
}

// ApplyFormat implements imaging.Image.
func (f *FakeImage) ApplyFormat(format imaging.Format, opts imaging.EncodeOptions) imaging.Image {
	next := f.clone()
	next.format = format
	next.encode = opts
	next.ops = append(next.ops, "format="+string(format))
	return next
}

// Resize implements imaging.Image, mimicking aspect-preserving resizes.
func (f *FakeImage) Resize(opts imaging.ResizeOptions) imaging.Image {
	next := f.clone()
	switch {
	case opts.Scale > 0:
		next.width = scale(f.width, opts.Scale)
		next.height = scale(f.height, opts.Scale)
	case opts.Width > 0 && opts.Height > 0:
		next.width, next.height = opts.Width, opts.Height
	case opts.Width > 0:
		next.height = scale(f.height, float64(opts.Width)/float64(f.width))
		next.width = opts.Width
	case opts.Height > 0:
		next.width = scale(f.width, float64(opts.Height)/float64(f.height))
		next.height = opts.Height
	}
	next.ops = append(next.ops, fmt.Sprintf("resize=%dx%d", next.width, next.height))
	return next
}

// Apply implements imaging.Image; the pixel operation itself is ignored.
func (f *FakeImage) Apply(_ func(image.Image) image.Image) imaging.Image {
	next := f.clone()
	next.ops = append(next.ops, "custom")
	return next
}

// Bytes implements imaging.Image with a deterministic textual encoding of
// the operation chain.
func (f *FakeImage) Bytes(_ context.Context) ([]byte, error) {
	f.loader.Encodes.Add(1)
	if f.loader.BytesErr != nil {
		return nil, f.loader.BytesErr
	}
	return []byte(fmt.Sprintf("fake(%s %s %dx%d [%s])",
		f.path, f.format, f.width, f.height, strings.Join(f.ops, ","))), nil
}

func scale(dim int, factor float64) int {
	return int(math.Round(float64(dim) * factor))
}

// Package native is the built-in image processing implementation, backed by
// disintegration/imaging for pixel math and the stdlib/x-image codecs for
// decoding. Encoding covers jpeg, png, gif, tiff and bmp out of the box;
// additional encoders (webp, avif) are registered via RegisterEncoder.
package native

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"os"

	"github.com/disintegration/imaging"

	// webp sources decode through the stdlib registry. tiff and bmp are
	// registered transitively by disintegration/imaging.
	_ "golang.org/x/image/webp"

	img "github.com/vk/imagesetgo/internal/imaging"
	"github.com/vk/imagesetgo/internal/ctxlog"
)

// Loader implements imaging.Loader on top of local files.
type Loader struct{}

// NewLoader creates a native loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads, sniffs and decodes the source at path into an Image handle.
func (l *Loader) Load(ctx context.Context, path string) (img.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source %s: %w", path, err)
	}

	format, err := img.InferFormat(data)
	if err != nil {
		return nil, err
	}

	decoded, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s as %s: %v", img.ErrTransform, path, format, err)
	}
	ctxlog.FromContext(ctx).Debug("Source decoded.", "path", path, "format", format)

	return &handle{src: decoded, format: format}, nil
}

// handle is an immutable chain of queued operations on a decoded source.
// Each method returns a copy so earlier handles in a chain stay usable.
type handle struct {
	src    image.Image
	format img.Format
	encode img.EncodeOptions
	ops    []func(image.Image) image.Image
}

// clone copies the handle with room for one more operation.
func (h *handle) clone() *handle {
	next := *h
	next.ops = append(h.ops[:len(h.ops):len(h.ops)])
	return &next
}

// Metadata evaluates the operation chain and reports the resulting format
// and dimensions.
func (h *handle) Metadata() (img.Metadata, error) {
	m := h.evaluate()
	bounds := m.Bounds()
	return img.Metadata{Format: h.format, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// ApplyFormat re-targets the output encoding.
func (h *handle) ApplyFormat(f img.Format, opts img.EncodeOptions) img.Image {
	next := h.clone()
	next.format = f
	next.encode = opts
	return next
}

// Resize queues a resize. Width-only resizes preserve aspect ratio; a Scale
// factor is resolved against the intrinsic width at evaluation time.
func (h *handle) Resize(opts img.ResizeOptions) img.Image {
	next := h.clone()
	next.ops = append(next.ops, func(m image.Image) image.Image {
		switch {
		case opts.Scale > 0:
			w := int(math.Round(float64(m.Bounds().Dx()) * opts.Scale))
			return imaging.Resize(m, w, 0, imaging.Lanczos)
		case opts.Width > 0 && opts.Height > 0:
			return imaging.Resize(m, opts.Width, opts.Height, imaging.Lanczos)
		case opts.Width > 0:
			return imaging.Resize(m, opts.Width, 0, imaging.Lanczos)
		case opts.Height > 0:
			return imaging.Resize(m, 0, opts.Height, imaging.Lanczos)
		default:
			return m
		}
	})
	return next
}

// Apply queues an arbitrary pixel operation.
func (h *handle) Apply(op func(image.Image) image.Image) img.Image {
	next := h.clone()
	next.ops = append(next.ops, op)
	return next
}

// evaluate runs the queued operations against the decoded source.
func (h *handle) evaluate() image.Image {
	m := h.src
	for _, op := range h.ops {
		m = op(m)
	}
	return m
}

// Bytes evaluates the chain and encodes the result in the handle's format.
func (h *handle) Bytes(ctx context.Context) ([]byte, error) {
	encoder, err := encoderFor(h.format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := encoder(&buf, h.evaluate(), h.encode); err != nil {
		return nil, fmt.Errorf("%w: %s encoding failed: %v", img.ErrTransform, h.format, err)
	}
	ctxlog.FromContext(ctx).Debug("Variant encoded.", "format", h.format, "bytes", buf.Len())
	return buf.Bytes(), nil
}

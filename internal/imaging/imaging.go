package imaging

import (
	"context"
	"errors"
	"image"
)

// ErrTransform is wrapped by errors returned when the processing
// implementation rejects an operation chain.
var ErrTransform = errors.New("transform failed")

// Metadata describes an image handle's current state: the format its bytes
// would be encoded in, and its pixel dimensions after all queued operations.
type Metadata struct {
	Format Format
	Width  int
	Height int
}

// EncodeOptions carries format-specific encoding parameters. The zero value
// means "encoder defaults" and must produce the same output as an absent
// options block.
type EncodeOptions struct {
	// Quality is 1-100 for lossy encoders; 0 uses the encoder default.
	Quality int `json:"quality,omitempty"`
	// Lossless switches capable encoders into lossless mode.
	Lossless bool `json:"lossless,omitempty"`
}

// ResizeOptions describes a resize operation. Exactly one of the two ways
// to express the target size is used: explicit Width/Height pixels, or a
// Scale factor applied to the image's intrinsic width at generation time
// (for density presets without base dimensions, where the natural width is
// unknown until pixel inspection).
type ResizeOptions struct {
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// Transform is a single operation on an image handle. Operations are
// chainable and side-effect free: they return a new handle and leave the
// receiver usable.
type Transform func(Image) Image

// Image is a handle on a loaded source with zero or more operations queued
// onto it. Implementations may evaluate lazily; any failure in the chain
// surfaces from Bytes or Metadata.
type Image interface {
	// Metadata returns the handle's resolved format and pixel dimensions.
	Metadata() (Metadata, error)

	// ApplyFormat re-targets the handle's encoding. The format must be a
	// concrete member of the allowed set, never FormatOriginal.
	ApplyFormat(f Format, opts EncodeOptions) Image

	// Resize queues a resize operation.
	Resize(opts ResizeOptions) Image

	// Apply queues an arbitrary pixel operation. Hook modules use this to
	// run disintegration/imaging filters without the engine knowing about
	// them.
	Apply(op func(image.Image) image.Image) Image

	// Bytes encodes the handle and returns the result.
	Bytes(ctx context.Context) ([]byte, error)
}

// Loader opens source files into Image handles.
type Loader interface {
	Load(ctx context.Context, path string) (Image, error)
}

package config

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/imagesetgo/internal/imaging"
)

// Strategy selects how a preset derives its variants.
type Strategy string

const (
	// StrategyDensity derives one variant per pixel-density multiplier.
	StrategyDensity Strategy = "density"
	// StrategyWidth derives one variant per target pixel width.
	StrategyWidth Strategy = "width"
)

// Model is the unified, format-agnostic representation of the entire
// manifest: the global options, all preset definitions, and the image
// requests to run through the pipeline.
type Model struct {
	Options *Options
	Presets map[string]*PresetDefinition
	Images  []*ImageRequest
}

// Options holds the global paths and URL settings of a manifest.
type Options struct {
	// Root is the directory image sources are resolved against.
	Root string
	// OutputDir receives emitted assets and descriptor modules in build mode.
	OutputDir string
	// CacheDir is the durable variant cache, shared across build runs.
	CacheDir string
	// BasePath is the public URL prefix emitted asset URLs are joined to.
	BasePath string
}

// Width is one entry of a width-strategy preset: either a pixel width or
// the "original" sentinel, which keeps the source's intrinsic size.
type Width struct {
	Value    int
	Original bool
}

// PresetDefinition is a named, user-authored recipe describing which
// variants to produce from a source image. Immutable once loaded.
type PresetDefinition struct {
	Name     string
	Strategy Strategy

	// Densities is the multiplier list for StrategyDensity, e.g. [1, 2, 3].
	Densities []float64

	// Widths is the target list for StrategyWidth.
	Widths []Width
	// Density optionally scales every width uniformly before resizing.
	Density *float64

	// Format is the target encoding, or FormatOriginal to keep the
	// source's own format.
	Format imaging.Format
	// Encode carries the target format's encoder options.
	Encode imaging.EncodeOptions

	// BaseWidth/BaseHeight anchor density presets: the largest density maps
	// to these literal dimensions and smaller densities scale down
	// proportionally. When absent, densities scale the intrinsic size.
	BaseWidth  *int
	BaseHeight *int

	// Hook names a registered post-transform hook applied after format
	// conversion and resizing; HookArgs are its decoded arguments.
	Hook     string
	HookArgs map[string]cty.Value

	// InferDimensions attaches the largest variant's pixel dimensions to
	// the emitted descriptor.
	InferDimensions bool
	// IsBackgroundImage switches the descriptor to image-set/url(...) form.
	IsBackgroundImage bool
}

// ImageRequest binds a source image to a preset under an emission name.
type ImageRequest struct {
	// Name is the descriptor module's base name in the output directory.
	Name string
	// Source is the image path, relative to Options.Root.
	Source string
	// Preset names the PresetDefinition to expand.
	Preset string
}

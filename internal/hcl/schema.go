package hcl

import "github.com/hashicorp/hcl/v2"

// manifestSchema is the top-level structure of one manifest file.
type manifestSchema struct {
	Options *optionsSchema  `hcl:"options,block"`
	Presets []*presetSchema `hcl:"preset,block"`
	Images  []*imageSchema  `hcl:"image,block"`
}

// optionsSchema is the `options` block: global paths and URL settings.
type optionsSchema struct {
	Root      string `hcl:"root,optional"`
	OutputDir string `hcl:"output_dir,optional"`
	CacheDir  string `hcl:"cache_dir,optional"`
	BasePath  string `hcl:"base_path,optional"`
}

// presetSchema is a `preset "<name>"` block. Widths stays an expression
// because the list may mix numbers with the "original" sentinel, which
// gohcl cannot decode into a homogeneous Go slice.
type presetSchema struct {
	Name      string         `hcl:"name,label"`
	Strategy  string         `hcl:"strategy"`
	Densities []float64      `hcl:"densities,optional"`
	Widths    hcl.Expression `hcl:"widths,optional"`
	Density   *float64       `hcl:"density,optional"`

	Format string        `hcl:"format,optional"`
	Encode *encodeSchema `hcl:"encode,block"`

	BaseWidth  *int `hcl:"base_width,optional"`
	BaseHeight *int `hcl:"base_height,optional"`

	Hook *hookSchema `hcl:"hook,block"`

	InferDimensions bool `hcl:"infer_dimensions,optional"`
	BackgroundImage bool `hcl:"background_image,optional"`
}

// encodeSchema carries the target format's encoder options.
type encodeSchema struct {
	Quality  int  `hcl:"quality,optional"`
	Lossless bool `hcl:"lossless,optional"`
}

// hookSchema is a `hook "<name>"` block; its body holds the hook's own
// arguments, which stay opaque to the loader.
type hookSchema struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// imageSchema is an `image "<name>"` block: one request to process.
type imageSchema struct {
	Name   string `hcl:"name,label"`
	Source string `hcl:"source"`
	Preset string `hcl:"preset"`
}

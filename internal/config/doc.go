// Package config defines the format-agnostic model for an imagesetgo
// manifest: global options, named variant presets, and the image requests
// to process. Format-specific loaders (see the hcl package) translate raw
// configuration into this model; everything downstream of the loader works
// exclusively against it.
package config

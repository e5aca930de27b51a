package config

import (
	"fmt"

	"github.com/vk/imagesetgo/internal/imaging"
)

// Default option values applied by ApplyDefaults.
const (
	DefaultOutputDir = "dist"
	DefaultCacheDir  = ".imageset-cache"
	DefaultBasePath  = "/assets/"
)

// ApplyDefaults fills unset options with their defaults.
func (m *Model) ApplyDefaults() {
	if m.Options == nil {
		m.Options = &Options{}
	}
	if m.Options.Root == "" {
		m.Options.Root = "."
	}
	if m.Options.OutputDir == "" {
		m.Options.OutputDir = DefaultOutputDir
	}
	if m.Options.CacheDir == "" {
		m.Options.CacheDir = DefaultCacheDir
	}
	if m.Options.BasePath == "" {
		m.Options.BasePath = DefaultBasePath
	}
}

// Validate checks the model's shape. Bad preset configuration is a setup
// error and fails fast here, never at request time.
func (m *Model) Validate() error {
	for name, preset := range m.Presets {
		if err := preset.validate(); err != nil {
			return fmt.Errorf("preset %q: %w", name, err)
		}
	}
	for _, img := range m.Images {
		if img.Source == "" {
			return fmt.Errorf("image %q: source must not be empty", img.Name)
		}
		if _, ok := m.Presets[img.Preset]; !ok {
			return fmt.Errorf("image %q: references unknown preset %q", img.Name, img.Preset)
		}
	}
	return nil
}

// validate checks a single preset definition.
func (p *PresetDefinition) validate() error {
	if !imaging.ValidFormat(p.Format) {
		return fmt.Errorf("format %q is not in the allowed set", p.Format)
	}

	switch p.Strategy {
	case StrategyDensity:
		if len(p.Densities) == 0 {
			return fmt.Errorf("density strategy requires a non-empty density list")
		}
		for _, d := range p.Densities {
			if d <= 0 {
				return fmt.Errorf("density %v must be positive", d)
			}
		}
	case StrategyWidth:
		if len(p.Widths) == 0 {
			return fmt.Errorf("width strategy requires a non-empty width list")
		}
		for _, w := range p.Widths {
			if !w.Original && w.Value <= 0 {
				return fmt.Errorf("width %d must be positive", w.Value)
			}
		}
		if p.Density != nil && *p.Density <= 0 {
			return fmt.Errorf("density %v must be positive", *p.Density)
		}
	default:
		return fmt.Errorf("unknown strategy %q", p.Strategy)
	}
	return nil
}

// Package grayscale provides the built-in 'grayscale' hook: it converts
// every variant of the preset to grayscale after resizing.
package grayscale

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
	"github.com/zclconf/go-cty/cty"

	img "github.com/vk/imagesetgo/internal/imaging"
	"github.com/vk/imagesetgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the hook with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHook("grayscale", &registry.RegisteredHook{
		Description: "Converts the variant to grayscale.",
		Build:       build,
	})
}

// build takes no arguments; the transform is the same for every preset.
func build(_ context.Context, _ map[string]cty.Value) (img.Transform, error) {
	return func(im img.Image) img.Image {
		return im.Apply(func(m image.Image) image.Image {
			return imaging.Grayscale(m)
		})
	}, nil
}

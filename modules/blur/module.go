// Package blur provides the built-in 'blur' hook: a gaussian blur applied
// after resizing, typically used for low-quality background placeholders.
package blur

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/zclconf/go-cty/cty"

	img "github.com/vk/imagesetgo/internal/imaging"
	"github.com/vk/imagesetgo/internal/registry"
)

// defaultSigma is the blur strength used when the manifest gives none.
const defaultSigma = 3.0

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the hook with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHook("blur", &registry.RegisteredHook{
		Description: "Applies a gaussian blur. Argument: sigma (number, > 0).",
		Build:       build,
	})
}

func build(_ context.Context, args map[string]cty.Value) (img.Transform, error) {
	sigma, err := registry.FloatArg(args, "sigma", defaultSigma)
	if err != nil {
		return nil, err
	}
	if sigma <= 0 {
		return nil, fmt.Errorf("sigma must be positive, got %v", sigma)
	}
	return func(im img.Image) img.Image {
		return im.Apply(func(m image.Image) image.Image {
			return imaging.Blur(m, sigma)
		})
	}, nil
}

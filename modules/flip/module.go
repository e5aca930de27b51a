// Package flip provides the built-in 'flip' hook, mirroring variants
// horizontally or vertically.
package flip

import (
	"context"
	"fmt"
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
	r.RegisterHook("flip", &registry.RegisteredHook{
		Description: "Mirrors the variant. Argument: direction ('horizontal' or 'vertical').",
		Build:       build,
	})
}

func build(_ context.Context, args map[string]cty.Value) (img.Transform, error) {
	direction, err := registry.StringArg(args, "direction", "horizontal")
	if err != nil {
		return nil, err
	}

	var op func(image.Image) *image.NRGBA
	switch direction {
	case "horizontal":
		op = imaging.FlipH
	case "vertical":
		op = imaging.FlipV
	default:
		return nil, fmt.Errorf("unknown flip direction: '%s'", direction)
	}

	return func(im img.Image) img.Image {
		return im.Apply(func(m image.Image) image.Image {
			return op(m)
		})
	}, nil
}

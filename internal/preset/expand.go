package preset

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/vk/imagesetgo/internal/config"
	"github.com/vk/imagesetgo/internal/imaging"
)

// VariantSpec is one concrete rendition to generate: the source-set
// condition descriptor (e.g. "2x", "480w", or "" for an original entry),
// the identity-bearing arguments, and the transform to apply.
type VariantSpec struct {
	Condition string
	Args      Args
	Transform imaging.Transform
}

// Expand turns a preset definition into its ordered variant specs. Specs
// sort ascending by density/width, with an "original" width entry last.
// The hook transform, when non-nil, runs after format conversion and
// resizing.
func Expand(def *config.PresetDefinition, hook imaging.Transform) ([]VariantSpec, error) {
	switch def.Strategy {
	case config.StrategyDensity:
		return expandDensity(def, hook)
	case config.StrategyWidth:
		return expandWidth(def, hook)
	default:
		return nil, fmt.Errorf("preset %q: unknown strategy %q", def.Name, def.Strategy)
	}
}

// expandDensity produces one spec per density multiplier, sorted ascending.
// With base dimensions, the largest density maps to the literal base size
// and smaller densities scale down proportionally. Without them, the raw
// density scales the source's intrinsic width at generation time.
func expandDensity(def *config.PresetDefinition, hook imaging.Transform) ([]VariantSpec, error) {
	densities := slices.Clone(def.Densities)
	slices.Sort(densities)
	if len(densities) == 0 {
		return nil, fmt.Errorf("preset %q: density list is empty", def.Name)
	}
	maxDensity := densities[len(densities)-1]

	hookArgs, err := canonicalHookArgs(def.HookArgs)
	if err != nil {
		return nil, err
	}

	specs := make([]VariantSpec, 0, len(densities))
	for _, d := range densities {
		var resize *imaging.ResizeOptions
		switch {
		case def.BaseWidth != nil || def.BaseHeight != nil:
			resize = &imaging.ResizeOptions{}
			if def.BaseWidth != nil {
				resize.Width = scaleDim(*def.BaseWidth, d/maxDensity)
			}
			if def.BaseHeight != nil {
				resize.Height = scaleDim(*def.BaseHeight, d/maxDensity)
			}
		case d != 1:
			resize = &imaging.ResizeOptions{Scale: d}
		}

		args := &DensityArgs{
			Strategy:   config.StrategyDensity,
			Density:    d,
			Format:     def.Format,
			BaseWidth:  def.BaseWidth,
			BaseHeight: def.BaseHeight,
			Encode:     encodePtr(def.Encode),
			Resize:     resize,
			Hook:       def.Hook,
			HookArgs:   hookArgs,
		}
		specs = append(specs, VariantSpec{
			Condition: fmt.Sprintf("%gx", d),
			Args:      args,
			Transform: buildTransform(def, resize, hook),
		})
	}
	return specs, nil
}

// expandWidth produces one spec per width entry, sorted ascending with the
// "original" sentinel last. A uniform density scalar multiplies every
// width's actual pixel size; the condition keeps the declared width.
func expandWidth(def *config.PresetDefinition, hook imaging.Transform) ([]VariantSpec, error) {
	widths := slices.Clone(def.Widths)
	sort.SliceStable(widths, func(i, j int) bool {
		if widths[i].Original || widths[j].Original {
			return widths[j].Original && !widths[i].Original
		}
		return widths[i].Value < widths[j].Value
	})
	if len(widths) == 0 {
		return nil, fmt.Errorf("preset %q: width list is empty", def.Name)
	}

	hookArgs, err := canonicalHookArgs(def.HookArgs)
	if err != nil {
		return nil, err
	}

	specs := make([]VariantSpec, 0, len(widths))
	for _, w := range widths {
		var (
			condition string
			resize    *imaging.ResizeOptions
		)
		if !w.Original {
			condition = fmt.Sprintf("%dw", w.Value)
			pixels := w.Value
			if def.Density != nil {
				pixels = scaleDim(w.Value, *def.Density)
			}
			resize = &imaging.ResizeOptions{Width: pixels}
		}

		args := &WidthArgs{
			Strategy: config.StrategyWidth,
			Width:    w.Value,
			Original: w.Original,
			Density:  def.Density,
			Format:   def.Format,
			Encode:   encodePtr(def.Encode),
			Resize:   resize,
			Hook:     def.Hook,
			HookArgs: hookArgs,
		}
		specs = append(specs, VariantSpec{
			Condition: condition,
			Args:      args,
			Transform: buildTransform(def, resize, hook),
		})
	}
	return specs, nil
}

// buildTransform composes the variant's operation chain: format conversion
// first, then resize, then the custom hook.
func buildTransform(def *config.PresetDefinition, resize *imaging.ResizeOptions, hook imaging.Transform) imaging.Transform {
	format := def.Format
	encode := def.Encode
	return func(im imaging.Image) imaging.Image {
		if format != imaging.FormatOriginal {
			im = im.ApplyFormat(format, encode)
		}
		if resize != nil {
			im = im.Resize(*resize)
		}
		if hook != nil {
			im = hook(im)
		}
		return im
	}
}

// scaleDim rounds a scaled dimension to whole pixels.
func scaleDim(dim int, factor float64) int {
	return int(math.Round(float64(dim) * factor))
}

package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/imagesetgo/internal/config"
	"github.com/vk/imagesetgo/internal/imaging"
)

// translatePreset converts the HCL-specific preset schema into the agnostic
// model.
func (l *Loader) translatePreset(s *presetSchema) (*config.PresetDefinition, error) {
	def := &config.PresetDefinition{
		Name:              s.Name,
		Strategy:          config.Strategy(s.Strategy),
		Densities:         s.Densities,
		Density:           s.Density,
		Format:            imaging.FormatOriginal,
		BaseWidth:         s.BaseWidth,
		BaseHeight:        s.BaseHeight,
		InferDimensions:   s.InferDimensions,
		IsBackgroundImage: s.BackgroundImage,
	}

	if s.Format != "" {
		def.Format = imaging.Format(s.Format)
	}
	if s.Encode != nil {
		def.Encode = imaging.EncodeOptions{
			Quality:  s.Encode.Quality,
			Lossless: s.Encode.Lossless,
		}
	}

	widths, err := translateWidths(s.Widths)
	if err != nil {
		return nil, err
	}
	def.Widths = widths

	if s.Hook != nil {
		def.Hook = s.Hook.Name
		args, err := translateHookArgs(s.Hook)
		if err != nil {
			return nil, err
		}
		def.HookArgs = args
	}

	return def, nil
}

// translateWidths evaluates the widths expression, which may mix pixel
// widths with the "original" sentinel string, e.g. [400, 800, "original"].
func translateWidths(expr hcl.Expression) ([]config.Width, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate widths: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("widths must be a list, got %s", val.Type().FriendlyName())
	}

	var widths []config.Width
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		switch elem.Type() {
		case cty.String:
			if elem.AsString() != "original" {
				return nil, fmt.Errorf("invalid width %q: only the sentinel \"original\" is allowed as a string", elem.AsString())
			}
			widths = append(widths, config.Width{Original: true})
		case cty.Number:
			var w int
			if err := gocty.FromCtyValue(elem, &w); err != nil {
				return nil, fmt.Errorf("invalid width: %w", err)
			}
			widths = append(widths, config.Width{Value: w})
		default:
			return nil, fmt.Errorf("invalid width element of type %s", elem.Type().FriendlyName())
		}
	}
	return widths, nil
}

// translateHookArgs evaluates the hook block body's attributes into plain
// cty values. The loader does not know hook argument schemas; the hook's
// Build function validates them.
func translateHookArgs(s *hookSchema) (map[string]cty.Value, error) {
	attrs, diags := s.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read hook %q arguments: %w", s.Name, diags)
	}
	if len(attrs) == 0 {
		return nil, nil
	}
	args := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate hook argument %q: %w", name, diags)
		}
		args[name] = val
	}
	return args, nil
}

// Package preset is the engine that expands a declarative preset definition
// into the ordered list of variant specs the pipeline generates. It also
// owns the canonical serialization of variant arguments, which downstream
// identity hashing depends on.
package preset

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/imagesetgo/internal/config"
	"github.com/vk/imagesetgo/internal/imaging"
)

// Args is the strategy-discriminated argument set of one variant. The two
// implementations are DensityArgs and WidthArgs; consumers match on the
// concrete type exhaustively.
//
// Canonical serialization rules: field order is fixed by struct declaration,
// omitted optionals are stripped (so an absent option and an explicit
// zero/default hash identically), and map keys serialize sorted. Two
// logically equal arg sets therefore always produce identical bytes.
type Args interface {
	// Canonical returns the deterministic serialized form used for
	// identity hashing.
	Canonical() ([]byte, error)
	// TargetFormat returns the variant's target encoding, or
	// FormatOriginal when the preset keeps the source format.
	TargetFormat() imaging.Format

	isArgs()
}

// DensityArgs are the arguments of a density-strategy variant.
type DensityArgs struct {
	Strategy   config.Strategy            `json:"strategy"`
	Density    float64                    `json:"density"`
	Format     imaging.Format             `json:"format"`
	BaseWidth  *int                       `json:"baseWidth,omitempty"`
	BaseHeight *int                       `json:"baseHeight,omitempty"`
	Encode     *imaging.EncodeOptions     `json:"encode,omitempty"`
	Resize     *imaging.ResizeOptions     `json:"resize,omitempty"`
	Hook       string                     `json:"hook,omitempty"`
	HookArgs   map[string]json.RawMessage `json:"hookArgs,omitempty"`
}

// WidthArgs are the arguments of a width-strategy variant. Original marks
// the "original" sentinel entry, which carries no width and no resize.
type WidthArgs struct {
	Strategy config.Strategy            `json:"strategy"`
	Width    int                        `json:"width,omitempty"`
	Original bool                       `json:"original,omitempty"`
	Density  *float64                   `json:"density,omitempty"`
	Format   imaging.Format             `json:"format"`
	Encode   *imaging.EncodeOptions     `json:"encode,omitempty"`
	Resize   *imaging.ResizeOptions     `json:"resize,omitempty"`
	Hook     string                     `json:"hook,omitempty"`
	HookArgs map[string]json.RawMessage `json:"hookArgs,omitempty"`
}

func (a *DensityArgs) isArgs() {}
func (a *WidthArgs) isArgs()   {}

// Canonical serializes the args deterministically. encoding/json emits
// struct fields in declaration order and map keys sorted, which is exactly
// the stability the identity contract needs.
func (a *DensityArgs) Canonical() ([]byte, error) {
	return json.Marshal(a)
}

// Canonical serializes the args deterministically; see DensityArgs.Canonical.
func (a *WidthArgs) Canonical() ([]byte, error) {
	return json.Marshal(a)
}

// TargetFormat implements Args.
func (a *DensityArgs) TargetFormat() imaging.Format { return a.Format }

// TargetFormat implements Args.
func (a *WidthArgs) TargetFormat() imaging.Format { return a.Format }

// encodePtr strips a zero-valued options struct so an explicitly-default
// encode block hashes the same as an omitted one.
func encodePtr(opts imaging.EncodeOptions) *imaging.EncodeOptions {
	if opts == (imaging.EncodeOptions{}) {
		return nil
	}
	return &opts
}

// canonicalHookArgs converts hook arguments into a JSON form with sorted
// keys. cty values serialize through their own type so that, for example,
// the number 2 and the string "2" stay distinct.
func canonicalHookArgs(args map[string]cty.Value) (map[string]json.RawMessage, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make(map[string]json.RawMessage, len(args))
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw, err := ctyjson.Marshal(args[k], args[k].Type())
		if err != nil {
			return nil, fmt.Errorf("failed to serialize hook argument %q: %w", k, err)
		}
		out[k] = raw
	}
	return out, nil
}

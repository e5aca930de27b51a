package pipeline

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vk/imagesetgo/internal/config"
	"github.com/vk/imagesetgo/internal/ctxlog"
	"github.com/vk/imagesetgo/internal/diskcache"
	"github.com/vk/imagesetgo/internal/flight"
	"github.com/vk/imagesetgo/internal/identity"
	"github.com/vk/imagesetgo/internal/imaging"
	"github.com/vk/imagesetgo/internal/metrics"
	"github.com/vk/imagesetgo/internal/preset"
	"github.com/vk/imagesetgo/internal/registry"
)

// VirtualPrefix marks serve-mode asset URLs carrying a variant identity for
// on-demand generation.
const VirtualPrefix = "/@imageset/"

// Mode selects how variant URLs resolve.
type Mode int

const (
	// ModeBuild materializes every variant and returns public asset URLs.
	ModeBuild Mode = iota
	// ModeServe defers generation and returns virtual identity URLs.
	ModeServe
)

// Options configures a Generator.
type Options struct {
	Mode     Mode
	Root     string
	BasePath string
	Loader   imaging.Loader
	Store    *diskcache.Store
	Presets  map[string]*config.PresetDefinition
	Hooks    *registry.Registry
}

// Generator is the generation pipeline for one build/serve session. It owns
// the session's single-flight request cache and the record of emitted
// assets; the disk store owns all durable state.
type Generator struct {
	opts  Options
	cache *flight.Cache[*Variant]

	mu      sync.Mutex
	assets  map[string]*Variant
	virtual map[string]virtualBinding
}

// virtualBinding captures everything needed to generate an identity's bytes
// later, when the dev server asks for them.
type virtualBinding struct {
	sourcePath string
	format     imaging.Format
	transform  imaging.Transform
}

// NewGenerator creates a pipeline instance. The request cache it owns is
// scoped to this instance; create a fresh Generator per session.
func NewGenerator(opts Options) *Generator {
	return &Generator{
		opts:    opts,
		cache:   flight.New[*Variant](),
		assets:  make(map[string]*Variant),
		virtual: make(map[string]virtualBinding),
	}
}

// Generate processes one image request into its source-set descriptor.
func (g *Generator) Generate(ctx context.Context, req Request) (*Descriptor, error) {
	logger := ctxlog.FromContext(ctx).With("path", req.Path)

	presetName := req.Query.Get("preset")
	if presetName == "" {
		return nil, ErrMissingPresetParameter
	}
	def, ok := g.opts.Presets[presetName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, presetName)
	}

	hook, err := g.opts.Hooks.ResolveHook(ctx, def)
	if err != nil {
		return nil, err
	}
	specs, err := preset.Expand(def, hook)
	if err != nil {
		return nil, err
	}

	sourcePath := filepath.Join(g.opts.Root, strings.TrimPrefix(req.Path, "/"))

	// Presets keeping the source format need the concrete format resolved
	// up front; it names the cache files and the served content type.
	format := def.Format
	if format == imaging.FormatOriginal {
		if format, err = imaging.InferFormatFile(sourcePath); err != nil {
			return nil, err
		}
	}

	entries := make([]SourceSetEntry, 0, len(specs))
	var largest *Variant
	for _, spec := range specs {
		id, err := identity.Identify(req.Path, spec.Args)
		if err != nil {
			return nil, err
		}

		var url string
		switch g.opts.Mode {
		case ModeBuild:
			v, err := g.variant(ctx, id, sourcePath, format, spec.Transform)
			if err != nil {
				return nil, fmt.Errorf("failed to generate variant %s of %s: %w", id, req.Path, err)
			}
			g.recordAsset(v)
			url = g.assetURL(v.FileName)
			largest = v
		case ModeServe:
			g.registerVirtual(id, virtualBinding{
				sourcePath: sourcePath,
				format:     format,
				transform:  spec.Transform,
			})
			url = VirtualPrefix + id
		}
		entries = append(entries, SourceSetEntry{URL: url, Condition: spec.Condition})
	}

	// The last entry (largest density/width) is the canonical fallback.
	if len(entries) == 0 || entries[len(entries)-1].URL == "" {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, req.Path)
	}
	src := entries[len(entries)-1].URL

	desc := &Descriptor{}
	if def.IsBackgroundImage {
		desc.Src = "url(" + src + ")"
		desc.ImageSet = joinEntries(entries)
	} else {
		desc.Src = src
		desc.SrcSet = joinEntries(entries)
	}

	if def.InferDimensions {
		// The largest spec's task is shared with the loop above, so this
		// costs nothing extra in build mode and one generation in serve.
		if largest == nil {
			last := specs[len(specs)-1]
			id, err := identity.Identify(req.Path, last.Args)
			if err != nil {
				return nil, err
			}
			if largest, err = g.variant(ctx, id, sourcePath, format, last.Transform); err != nil {
				return nil, fmt.Errorf("failed to infer dimensions of %s: %w", req.Path, err)
			}
		}
		if desc.Width, desc.Height, err = largest.Dimensions(); err != nil {
			return nil, err
		}
	}

	logger.Debug("Request generated.", "preset", presetName, "variants", len(entries))
	return desc, nil
}

// Resolve produces the bytes for a virtual identity registered earlier in
// this session. Unknown identities return ErrUnknownVariant.
func (g *Generator) Resolve(ctx context.Context, id string) (*Variant, error) {
	g.mu.Lock()
	b, ok := g.virtual[id]
	g.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, id)
	}
	return g.variant(ctx, id, b.sourcePath, b.format, b.transform)
}

// variant runs one generation through the session request cache and the
// durable disk cache. The producer only executes when both miss.
func (g *Generator) variant(ctx context.Context, id, sourcePath string, format imaging.Format, transform imaging.Transform) (*Variant, error) {
	return g.cache.GetOrStart(ctx, id, func(ctx context.Context) (*Variant, error) {
		timer := prometheus.NewTimer(metrics.GenerationDuration)
		defer timer.ObserveDuration()

		name, err := g.opts.Store.FileName(sourcePath, id, format)
		if err != nil {
			return nil, err
		}

		var width, height int
		data, err := g.opts.Store.EnsureFile(ctx, name, func(ctx context.Context) ([]byte, error) {
			im, err := g.opts.Loader.Load(ctx, sourcePath)
			if err != nil {
				return nil, err
			}
			out := transform(im)
			if md, err := out.Metadata(); err == nil {
				width, height = md.Width, md.Height
			}
			return out.Bytes(ctx)
		})
		if err != nil {
			return nil, err
		}

		return &Variant{
			Identity: id,
			FileName: name,
			Format:   format,
			Data:     data,
			width:    width,
			height:   height,
		}, nil
	})
}

// recordAsset remembers a materialized variant for bundle emission and the
// final cache reconciliation.
func (g *Generator) recordAsset(v *Variant) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.assets[v.FileName] = v
}

// registerVirtual binds an identity to its deferred generation inputs.
// Re-registration is harmless: identical identities carry identical
// bindings by construction.
func (g *Generator) registerVirtual(id string, b virtualBinding) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.virtual[id] = b
}

// Assets returns every materialized variant, sorted by filename for
// deterministic emission order.
func (g *Generator) Assets() []*Variant {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Variant, 0, len(g.assets))
	for _, v := range g.assets {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileName < out[j].FileName })
	return out
}

// AssetNames returns the set of emitted asset filenames, the keep-set for
// the cache reconciler.
func (g *Generator) AssetNames() map[string]struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make(map[string]struct{}, len(g.assets))
	for name := range g.assets {
		names[name] = struct{}{}
	}
	return names
}

// assetURL joins the public base path with an asset filename.
func (g *Generator) assetURL(name string) string {
	return path.Join(g.opts.BasePath, name)
}

package pipeline

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/imagesetgo/internal/config"
	"github.com/vk/imagesetgo/internal/diskcache"
	"github.com/vk/imagesetgo/internal/imaging"
	"github.com/vk/imagesetgo/internal/imaging/native"
	"github.com/vk/imagesetgo/internal/registry"
	"github.com/vk/imagesetgo/internal/testutil"
)

// harness bundles the collaborators of one generator session.
type harness struct {
	root   string
	loader *testutil.FakeLoader
	store  *diskcache.Store
	gen    *Generator
}

func newHarness(t *testing.T, mode Mode, presets map[string]*config.PresetDefinition) *harness {
	t.Helper()

	root := t.TempDir()
	store, err := diskcache.New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	loader := testutil.NewFakeLoader()

	return &harness{
		root:   root,
		loader: loader,
		store:  store,
		gen: NewGenerator(Options{
			Mode:     mode,
			Root:     root,
			BasePath: "/assets/",
			Loader:   loader,
			Store:    store,
			Presets:  presets,
			Hooks:    registry.New(),
		}),
	}
}

func cardPreset() map[string]*config.PresetDefinition {
	return map[string]*config.PresetDefinition{
		"card": {
			Name:     "card",
			Strategy: config.StrategyWidth,
			Widths:   []config.Width{{Value: 800}, {Value: 400}},
			Format:   imaging.FormatWebP,
		},
	}
}

func cardRequest() Request {
	return Request{Path: "img/photo.png", Query: url.Values{"preset": {"card"}}}
}

func TestGenerate_BuildAssemblesSrcSet(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := newHarness(t, ModeBuild, cardPreset())
	testutil.WriteFile(t, h.root, "img/photo.png", []byte("sourcebytes"))

	// --- Act ---
	desc, err := h.gen.Generate(context.Background(), cardRequest())

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, desc)

	entries := strings.Split(desc.SrcSet, ", ")
	require.Len(t, entries, 2)
	assert.True(t, strings.HasSuffix(entries[0], " 400w"), "smallest width first: %q", desc.SrcSet)
	assert.True(t, strings.HasSuffix(entries[1], " 800w"), "largest width last: %q", desc.SrcSet)

	// The canonical src is the largest variant's URL.
	largestURL := strings.TrimSuffix(entries[1], " 800w")
	assert.Equal(t, largestURL, desc.Src)
	assert.Empty(t, desc.ImageSet)

	for _, entry := range entries {
		assert.True(t, strings.HasPrefix(entry, "/assets/photo."), "asset URLs join the base path: %q", entry)
		urlPart := strings.Fields(entry)[0]
		assert.True(t, strings.HasSuffix(urlPart, ".webp"), "filenames carry the target format: %q", urlPart)
	}

	assert.Len(t, h.gen.Assets(), 2)
	assert.Equal(t, int64(2), h.loader.Loads.Load())
	assert.Equal(t, int64(2), h.loader.Encodes.Load())
}

func TestGenerate_RepeatedRequestHitsTheRequestCache(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := newHarness(t, ModeBuild, cardPreset())
	testutil.WriteFile(t, h.root, "img/photo.png", []byte("sourcebytes"))

	// --- Act ---
	first, err := h.gen.Generate(context.Background(), cardRequest())
	require.NoError(t, err)
	second, err := h.gen.Generate(context.Background(), cardRequest())
	require.NoError(t, err)

	// --- Assert ---
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("descriptor mismatch across identical requests (-first +second):\n%s", diff)
	}
	assert.Equal(t, int64(2), h.loader.Loads.Load(), "variants must not regenerate within a session")
	assert.Len(t, h.gen.Assets(), 2)
}

func TestGenerate_DiskCacheSurvivesSessions(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Two generator sessions share one cache directory and one unchanged
	// source. The second session must serve everything from disk.
	root := t.TempDir()
	testutil.WriteFile(t, root, "img/photo.png", []byte("sourcebytes"))
	store, err := diskcache.New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	session := func(loader *testutil.FakeLoader) *Descriptor {
		gen := NewGenerator(Options{
			Mode:     ModeBuild,
			Root:     root,
			BasePath: "/assets/",
			Loader:   loader,
			Store:    store,
			Presets:  cardPreset(),
			Hooks:    registry.New(),
		})
		desc, err := gen.Generate(context.Background(), cardRequest())
		require.NoError(t, err)
		return desc
	}

	// --- Act ---
	firstLoader := testutil.NewFakeLoader()
	first := session(firstLoader)
	secondLoader := testutil.NewFakeLoader()
	second := session(secondLoader)

	// --- Assert ---
	assert.Equal(t, int64(2), firstLoader.Loads.Load())
	assert.Equal(t, int64(0), secondLoader.Loads.Load(), "an unchanged source reuses its cache files")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("descriptor mismatch across sessions (-first +second):\n%s", diff)
	}
}

func TestGenerate_BackgroundPresetUsesImageSet(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	presets := map[string]*config.PresetDefinition{
		"bg": {
			Name:              "bg",
			Strategy:          config.StrategyDensity,
			Densities:         []float64{1, 2},
			Format:            imaging.FormatJPEG,
			IsBackgroundImage: true,
		},
	}
	h := newHarness(t, ModeBuild, presets)
	testutil.WriteFile(t, h.root, "bg.png", []byte("sourcebytes"))

	// --- Act ---
	desc, err := h.gen.Generate(context.Background(), Request{
		Path:  "bg.png",
		Query: url.Values{"preset": {"bg"}},
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(desc.Src, "url("), "background src wraps in url(): %q", desc.Src)
	assert.True(t, strings.HasSuffix(desc.Src, ")"))
	assert.NotEmpty(t, desc.ImageSet)
	assert.Empty(t, desc.SrcSet)
	assert.Contains(t, desc.ImageSet, " 1x, ")
	assert.True(t, strings.HasSuffix(desc.ImageSet, " 2x"))
}

func TestGenerate_InferDimensions(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The fake loader fabricates 1600x900 sources, so the 800w variant of an
	// aspect-preserving resize is 800x450.
	presets := cardPreset()
	presets["card"].InferDimensions = true
	h := newHarness(t, ModeBuild, presets)
	testutil.WriteFile(t, h.root, "img/photo.png", []byte("sourcebytes"))

	// --- Act ---
	desc, err := h.gen.Generate(context.Background(), cardRequest())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 800, desc.Width)
	assert.Equal(t, 450, desc.Height)
}

func TestGenerate_RequestErrors(t *testing.T) {
	t.Parallel()

	h := newHarness(t, ModeBuild, cardPreset())
	testutil.WriteFile(t, h.root, "img/photo.png", []byte("sourcebytes"))

	t.Run("missing preset parameter", func(t *testing.T) {
		t.Parallel()
		_, err := h.gen.Generate(context.Background(), Request{Path: "img/photo.png", Query: url.Values{}})
		require.ErrorIs(t, err, ErrMissingPresetParameter)
	})

	t.Run("unknown preset", func(t *testing.T) {
		t.Parallel()
		_, err := h.gen.Generate(context.Background(), Request{
			Path:  "img/photo.png",
			Query: url.Values{"preset": {"nope"}},
		})
		require.ErrorIs(t, err, ErrUnknownPreset)
	})

	t.Run("missing source file", func(t *testing.T) {
		t.Parallel()
		_, err := h.gen.Generate(context.Background(), Request{
			Path:  "img/missing.png",
			Query: url.Values{"preset": {"card"}},
		})
		require.Error(t, err)
	})
}

func TestGenerate_OriginalFormatInfersFromSource(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	presets := map[string]*config.PresetDefinition{
		"raw": {
			Name:     "raw",
			Strategy: config.StrategyWidth,
			Widths:   []config.Width{{Value: 40}},
			Format:   imaging.FormatOriginal,
		},
	}
	h := newHarness(t, ModeBuild, presets)
	testutil.WritePNG(t, h.root, "photo.png", 120, 80)

	// --- Act ---
	desc, err := h.gen.Generate(context.Background(), Request{
		Path:  "photo.png",
		Query: url.Values{"preset": {"raw"}},
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(desc.Src, ".png"), "inferred format names the asset: %q", desc.Src)
}

func TestGenerate_ServeModeDefersGeneration(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := newHarness(t, ModeServe, cardPreset())
	testutil.WriteFile(t, h.root, "img/photo.png", []byte("sourcebytes"))

	// --- Act ---
	desc, err := h.gen.Generate(context.Background(), cardRequest())

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(desc.Src, VirtualPrefix), "serve mode returns virtual URLs: %q", desc.Src)
	assert.Equal(t, int64(0), h.loader.Loads.Load(), "no pixels move until a variant is fetched")
	assert.Empty(t, h.gen.Assets())

	// Resolving a virtual identity generates exactly that variant.
	id := strings.TrimPrefix(desc.Src, VirtualPrefix)
	v, err := h.gen.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, v.Identity)
	assert.Equal(t, imaging.FormatWebP, v.Format)
	assert.NotEmpty(t, v.Data)
	assert.Equal(t, int64(1), h.loader.Loads.Load())
}

func TestResolve_UnknownIdentity(t *testing.T) {
	t.Parallel()

	h := newHarness(t, ModeServe, cardPreset())
	_, err := h.gen.Resolve(context.Background(), "deadbeef1234.webp")
	require.ErrorIs(t, err, ErrUnknownVariant)
}

func TestVariant_DimensionsFromCachedBytes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A second session gets its variants off disk, where no transform
	// metadata exists; dimensions must come from decoding the stored bytes.
	root := t.TempDir()
	testutil.WritePNG(t, root, "photo.png", 120, 80)
	store, err := diskcache.New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	presets := map[string]*config.PresetDefinition{
		"raw": {
			Name:            "raw",
			Strategy:        config.StrategyWidth,
			Widths:          []config.Width{{Original: true}},
			Format:          imaging.FormatOriginal,
			InferDimensions: true,
		},
	}
	newSession := func() *Generator {
		return NewGenerator(Options{
			Mode:     ModeBuild,
			Root:     root,
			BasePath: "/assets/",
			Loader:   native.NewLoader(),
			Store:    store,
			Presets:  presets,
			Hooks:    registry.New(),
		})
	}
	req := Request{Path: "photo.png", Query: url.Values{"preset": {"raw"}}}

	// --- Act ---
	_, err = newSession().Generate(context.Background(), req)
	require.NoError(t, err)
	desc, err := newSession().Generate(context.Background(), req)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 120, desc.Width)
	assert.Equal(t, 80, desc.Height)
}

func TestGenerate_ConcurrentDimensionInferenceFromWarmCache(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Warm-cache variants share one *Variant through the request cache and
	// resolve their dimensions lazily from the stored bytes; concurrent
	// requests must agree without racing on that state.
	root := t.TempDir()
	testutil.WritePNG(t, root, "photo.png", 120, 80)
	store, err := diskcache.New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	presets := map[string]*config.PresetDefinition{
		"raw": {
			Name:            "raw",
			Strategy:        config.StrategyWidth,
			Widths:          []config.Width{{Original: true}},
			Format:          imaging.FormatOriginal,
			InferDimensions: true,
		},
	}
	newSession := func() *Generator {
		return NewGenerator(Options{
			Mode:     ModeBuild,
			Root:     root,
			BasePath: "/assets/",
			Loader:   native.NewLoader(),
			Store:    store,
			Presets:  presets,
			Hooks:    registry.New(),
		})
	}
	req := Request{Path: "photo.png", Query: url.Values{"preset": {"raw"}}}

	// First session materializes the cache file.
	_, err = newSession().Generate(context.Background(), req)
	require.NoError(t, err)

	// --- Act ---
	// The second session serves everything from disk, so every caller
	// reaches the lazy dimension decode on the same shared variant.
	gen := newSession()
	const callers = 8
	descs := make([]*Descriptor, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			desc, err := gen.Generate(context.Background(), req)
			assert.NoError(t, err)
			descs[i] = desc
		}()
	}
	wg.Wait()

	// --- Assert ---
	for _, desc := range descs {
		require.NotNil(t, desc)
		assert.Equal(t, 120, desc.Width)
		assert.Equal(t, 80, desc.Height)
	}
}

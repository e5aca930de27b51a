package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/imagesetgo/internal/imaging"
)

func validWidthPreset(name string) *PresetDefinition {
	return &PresetDefinition{
		Name:     name,
		Strategy: StrategyWidth,
		Widths:   []Width{{Value: 400}},
		Format:   imaging.FormatWebP,
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	t.Run("fills empty options", func(t *testing.T) {
		t.Parallel()
		m := &Model{}
		m.ApplyDefaults()
		require.NotNil(t, m.Options)
		assert.Equal(t, ".", m.Options.Root)
		assert.Equal(t, DefaultOutputDir, m.Options.OutputDir)
		assert.Equal(t, DefaultCacheDir, m.Options.CacheDir)
		assert.Equal(t, DefaultBasePath, m.Options.BasePath)
	})

	t.Run("keeps explicit options", func(t *testing.T) {
		t.Parallel()
		m := &Model{Options: &Options{Root: "site", OutputDir: "out"}}
		m.ApplyDefaults()
		assert.Equal(t, "site", m.Options.Root)
		assert.Equal(t, "out", m.Options.OutputDir)
		assert.Equal(t, DefaultCacheDir, m.Options.CacheDir)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	negative := -1.0
	testCases := []struct {
		name    string
		model   *Model
		wantErr string
	}{
		{
			name: "valid model",
			model: &Model{
				Presets: map[string]*PresetDefinition{
					"card": validWidthPreset("card"),
					"hero": {
						Name:      "hero",
						Strategy:  StrategyDensity,
						Densities: []float64{1, 2},
						Format:    imaging.FormatOriginal,
					},
				},
				Images: []*ImageRequest{{Name: "a", Source: "a.png", Preset: "card"}},
			},
		},
		{
			name: "empty densities",
			model: &Model{Presets: map[string]*PresetDefinition{
				"p": {Name: "p", Strategy: StrategyDensity, Format: imaging.FormatPNG},
			}},
			wantErr: "non-empty density list",
		},
		{
			name: "non-positive density",
			model: &Model{Presets: map[string]*PresetDefinition{
				"p": {Name: "p", Strategy: StrategyDensity, Densities: []float64{0}, Format: imaging.FormatPNG},
			}},
			wantErr: "must be positive",
		},
		{
			name: "empty widths",
			model: &Model{Presets: map[string]*PresetDefinition{
				"p": {Name: "p", Strategy: StrategyWidth, Format: imaging.FormatPNG},
			}},
			wantErr: "non-empty width list",
		},
		{
			name: "non-positive width",
			model: &Model{Presets: map[string]*PresetDefinition{
				"p": {Name: "p", Strategy: StrategyWidth, Widths: []Width{{Value: 0}}, Format: imaging.FormatPNG},
			}},
			wantErr: "must be positive",
		},
		{
			name: "non-positive uniform density",
			model: &Model{Presets: map[string]*PresetDefinition{
				"p": {Name: "p", Strategy: StrategyWidth, Widths: []Width{{Value: 400}}, Density: &negative, Format: imaging.FormatPNG},
			}},
			wantErr: "must be positive",
		},
		{
			name: "unknown strategy",
			model: &Model{Presets: map[string]*PresetDefinition{
				"p": {Name: "p", Strategy: "steps", Format: imaging.FormatPNG},
			}},
			wantErr: "unknown strategy",
		},
		{
			name: "disallowed format",
			model: &Model{Presets: map[string]*PresetDefinition{
				"p": {Name: "p", Strategy: StrategyWidth, Widths: []Width{{Value: 400}}, Format: "svg"},
			}},
			wantErr: "not in the allowed set",
		},
		{
			name: "image without source",
			model: &Model{
				Presets: map[string]*PresetDefinition{"card": validWidthPreset("card")},
				Images:  []*ImageRequest{{Name: "a", Preset: "card"}},
			},
			wantErr: "source must not be empty",
		},
		{
			name: "image references unknown preset",
			model: &Model{
				Presets: map[string]*PresetDefinition{"card": validWidthPreset("card")},
				Images:  []*ImageRequest{{Name: "a", Source: "a.png", Preset: "missing"}},
			},
			wantErr: "unknown preset",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.model.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

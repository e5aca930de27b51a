package blur

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/imagesetgo/internal/registry"
	"github.com/vk/imagesetgo/internal/testutil"
)

func TestModule_Register(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	(&Module{}).Register(reg)

	_, ok := reg.Hook("blur")
	require.True(t, ok)
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("applies a pixel operation", func(t *testing.T) {
		t.Parallel()
		transform, err := build(context.Background(), map[string]cty.Value{"sigma": cty.NumberIntVal(5)})
		require.NoError(t, err)

		im, err := testutil.NewFakeLoader().Load(context.Background(), "photo.png")
		require.NoError(t, err)
		out, err := transform(im).Bytes(context.Background())
		require.NoError(t, err)
		assert.Contains(t, string(out), "custom")
	})

	t.Run("default sigma", func(t *testing.T) {
		t.Parallel()
		transform, err := build(context.Background(), nil)
		require.NoError(t, err)
		assert.NotNil(t, transform)
	})

	t.Run("non-positive sigma", func(t *testing.T) {
		t.Parallel()
		_, err := build(context.Background(), map[string]cty.Value{"sigma": cty.NumberIntVal(-1)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sigma must be positive")
	})

	t.Run("non-numeric sigma", func(t *testing.T) {
		t.Parallel()
		_, err := build(context.Background(), map[string]cty.Value{"sigma": cty.StringVal("soft")})
		require.Error(t, err)
	})
}

package identity

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/imagesetgo/internal/imaging"
	"github.com/vk/imagesetgo/internal/preset"
)

var hexRe = regexp.MustCompile(`^[0-9a-f]{12}$`)

func TestIdentify_Deterministic(t *testing.T) {
	t.Parallel()

	args := &preset.WidthArgs{Width: 400, Format: imaging.FormatWebP}

	first, err := Identify("img/photo.png", args)
	require.NoError(t, err)
	second, err := Identify("img/photo.png", args)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestIdentify_FormatSuffix(t *testing.T) {
	t.Parallel()

	t.Run("concrete format appends an extension", func(t *testing.T) {
		t.Parallel()
		id, err := Identify("photo.png", &preset.WidthArgs{Width: 400, Format: imaging.FormatWebP})
		require.NoError(t, err)
		require.Len(t, id, 12+len(".webp"))
		assert.True(t, hexRe.MatchString(id[:12]), "identity prefix should be lowercase hex: %q", id)
		assert.Equal(t, ".webp", id[12:])
	})

	t.Run("original format stays bare", func(t *testing.T) {
		t.Parallel()
		id, err := Identify("photo.png", &preset.WidthArgs{Original: true, Format: imaging.FormatOriginal})
		require.NoError(t, err)
		assert.True(t, hexRe.MatchString(id), "identity should be 12 lowercase hex chars: %q", id)
	})
}

func TestIdentify_DistinctInputsDistinctIdentities(t *testing.T) {
	t.Parallel()

	base, err := Identify("photo.png", &preset.DensityArgs{Density: 1, Format: imaging.FormatWebP})
	require.NoError(t, err)

	testCases := []struct {
		name string
		path string
		args preset.Args
	}{
		{
			name: "different density",
			path: "photo.png",
			args: &preset.DensityArgs{Density: 2, Format: imaging.FormatWebP},
		},
		{
			name: "different source path",
			path: "other.png",
			args: &preset.DensityArgs{Density: 1, Format: imaging.FormatWebP},
		},
		{
			name: "different format",
			path: "photo.png",
			args: &preset.DensityArgs{Density: 1, Format: imaging.FormatJPEG},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			id, err := Identify(tc.path, tc.args)
			require.NoError(t, err)
			assert.NotEqual(t, base, id)
		})
	}
}

func TestHashBytes(t *testing.T) {
	t.Parallel()

	a := HashBytes([]byte("source bytes"))
	assert.True(t, hexRe.MatchString(a))
	assert.Equal(t, a, HashBytes([]byte("source bytes")))
	assert.NotEqual(t, a, HashBytes([]byte("source bytes, edited")))
}

func TestHashStrings(t *testing.T) {
	t.Parallel()

	a := HashStrings("id", "srchash")
	assert.True(t, hexRe.MatchString(a))
	assert.Equal(t, a, HashStrings("id", "srchash"))
	assert.NotEqual(t, a, HashStrings("id", "otherhash"))
}

package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	// Dimension decoding of disk-cached bytes goes through the stdlib
	// registry; webp registration comes with the native imaging package.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/vk/imagesetgo/internal/imaging"
)

// Variant is one finished rendition: the generated bytes plus the metadata
// the build needs to emit them. Variants are owned by the single-flight
// request cache for the session and may be shared across goroutines.
type Variant struct {
	// Identity is the deterministic variant ID (see the identity package).
	Identity string
	// FileName is the content-addressed cache/asset filename.
	FileName string
	// Format is the concrete output encoding.
	Format imaging.Format
	// Data holds the encoded bytes.
	Data []byte

	// width/height are filled during fresh generation; zero when the
	// variant came straight off the disk cache, in which case Dimensions
	// resolves them lazily under dimOnce.
	width, height int
	dimOnce       sync.Once
	dimErr        error
}

// Dimensions returns the variant's pixel size. Freshly generated variants
// carry it from the transform's metadata; disk-cached ones decode it from
// the stored bytes on first use. Safe for concurrent callers.
func (v *Variant) Dimensions() (int, int, error) {
	v.dimOnce.Do(func() {
		if v.width > 0 && v.height > 0 {
			return
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(v.Data))
		if err != nil {
			v.dimErr = fmt.Errorf("failed to decode dimensions of %s: %w", v.FileName, err)
			return
		}
		v.width, v.height = cfg.Width, cfg.Height
	})
	if v.dimErr != nil {
		return 0, 0, v.dimErr
	}
	return v.width, v.height, nil
}

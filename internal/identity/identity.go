// Package identity computes the deterministic, collision-resistant ID that
// names one variant: a digest of the source path and the canonical form of
// the variant's arguments. Identical (path, args) pairs always produce the
// identical identity; any change to either changes it.
package identity

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/vk/imagesetgo/internal/imaging"
	"github.com/vk/imagesetgo/internal/preset"
)

// hexLen is the number of hex characters kept from the digest. 48 bits is
// far beyond what a build graph of variants could collide on; a collision
// would be a correctness bug, not a handled case.
const hexLen = 12

// Identify digests sourcePath concatenated with the canonical args
// serialization. When the target format is concrete (not "original"), the
// format is appended as an extension so the identity doubles as a
// recognizable virtual filename.
func Identify(sourcePath string, args preset.Args) (string, error) {
	canonical, err := args.Canonical()
	if err != nil {
		return "", fmt.Errorf("failed to serialize variant args: %w", err)
	}

	h := blake3.New()
	h.Write([]byte(sourcePath))
	h.Write(canonical)
	id := hex.EncodeToString(h.Sum(nil))[:hexLen]

	if f := args.TargetFormat(); f != imaging.FormatOriginal {
		return id + "." + string(f), nil
	}
	return id, nil
}

// HashBytes digests arbitrary content (e.g. a source file's bytes) into a
// short hex string, using the same digest and truncation as Identify.
func HashBytes(data []byte) string {
	h := blake3.New()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))[:hexLen]
}

// HashStrings digests the concatenation of parts.
func HashStrings(parts ...string) string {
	h := blake3.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))[:hexLen]
}

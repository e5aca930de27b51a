package imaging

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format identifies an image encoding.
type Format string

const (
	// FormatOriginal is the sentinel meaning "keep the source's own format".
	// It is valid in preset configuration but never describes a concrete
	// encoding; presets using it resolve to one of the concrete formats
	// below via InferFormat.
	FormatOriginal Format = "original"

	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatAVIF Format = "avif"
	FormatGIF  Format = "gif"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
)

// ErrFormatInference is wrapped by errors returned when a source's format
// cannot be determined or is outside the allowed set.
var ErrFormatInference = errors.New("format inference failed")

// formats is the fixed allowed set of concrete output formats, mapped to
// their MIME types.
var formats = map[Format]string{
	FormatJPEG: "image/jpeg",
	FormatPNG:  "image/png",
	FormatWebP: "image/webp",
	FormatAVIF: "image/avif",
	FormatGIF:  "image/gif",
	FormatTIFF: "image/tiff",
	FormatBMP:  "image/bmp",
}

// formatAliases maps detected formats onto the name used for output. HEIF
// sources are reported and named as avif: the container is the same family
// and avif is the name browsers understand.
var formatAliases = map[Format]Format{
	"heif": FormatAVIF,
	"heic": FormatAVIF,
	"jpg":  FormatJPEG,
}

// ValidFormat reports whether f is FormatOriginal or a member of the fixed
// allowed format set.
func ValidFormat(f Format) bool {
	if f == FormatOriginal {
		return true
	}
	_, ok := formats[f]
	return ok
}

// Formats returns the allowed concrete formats in no particular order.
func Formats() []Format {
	out := make([]Format, 0, len(formats))
	for f := range formats {
		out = append(out, f)
	}
	return out
}

// MIMEType returns the MIME type for a concrete format. Unknown formats
// fall back to application/octet-stream.
func (f Format) MIMEType() string {
	if m, ok := formats[f]; ok {
		return m
	}
	return "application/octet-stream"
}

// normalizeFormat applies aliasing and reports whether the result is in the
// allowed set.
func normalizeFormat(f Format) (Format, bool) {
	if alias, ok := formatAliases[f]; ok {
		f = alias
	}
	_, ok := formats[f]
	return f, ok
}

// InferFormat sniffs the content of data and returns the source's format,
// with aliasing applied (heif/heic report as avif). A format outside the
// allowed set wraps ErrFormatInference.
func InferFormat(data []byte) (Format, error) {
	mt := mimetype.Detect(data)
	sub, found := strings.CutPrefix(mt.String(), "image/")
	if !found {
		return "", fmt.Errorf("%w: %q is not an image type", ErrFormatInference, mt.String())
	}
	// mimetype reports sequence subtypes for some containers
	// (e.g. "image/heif-sequence"); they alias the same as their stills.
	sub = strings.TrimSuffix(sub, "-sequence")
	f, ok := normalizeFormat(Format(sub))
	if !ok {
		return "", fmt.Errorf("%w: format %q is not in the allowed set", ErrFormatInference, sub)
	}
	return f, nil
}

// InferFormatFile sniffs the format of the file at path. Reading only the
// detection header would suffice, but sources are small and are about to be
// fully read for hashing anyway.
func InferFormatFile(path string) (Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read source %s: %v", ErrFormatInference, path, err)
	}
	return InferFormat(data)
}

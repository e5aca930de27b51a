package native

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/disintegration/imaging"

	img "github.com/vk/imagesetgo/internal/imaging"
)

// ErrEncoderUnavailable is returned when a preset targets a format no
// registered encoder can produce. webp and avif have no pure-Go encoder;
// embedders with cgo codecs register one at startup.
var ErrEncoderUnavailable = errors.New("no encoder registered for format")

// EncodeFunc writes m to w in a specific format.
type EncodeFunc func(w io.Writer, m image.Image, opts img.EncodeOptions) error

var (
	encodersMu sync.RWMutex
	encoders   = map[img.Format]EncodeFunc{
		img.FormatJPEG: encodeJPEG,
		img.FormatPNG:  builtin(imaging.PNG),
		img.FormatGIF:  builtin(imaging.GIF),
		img.FormatTIFF: builtin(imaging.TIFF),
		img.FormatBMP:  builtin(imaging.BMP),
	}
)

// RegisterEncoder installs an encoder for a format. Registering a format
// twice is a programmer error.
func RegisterEncoder(f img.Format, fn EncodeFunc) {
	encodersMu.Lock()
	defer encodersMu.Unlock()
	if _, exists := encoders[f]; exists {
		panic(fmt.Sprintf("encoder for format '%s' already registered", f))
	}
	encoders[f] = fn
}

// encoderFor looks up the encoder for a format.
func encoderFor(f img.Format) (EncodeFunc, error) {
	encodersMu.RLock()
	defer encodersMu.RUnlock()
	fn, ok := encoders[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEncoderUnavailable, f)
	}
	return fn, nil
}

// builtin wraps one of disintegration/imaging's lossless encoders.
func builtin(f imaging.Format) EncodeFunc {
	return func(w io.Writer, m image.Image, _ img.EncodeOptions) error {
		return imaging.Encode(w, m, f)
	}
}

// encodeJPEG honors the quality option when present.
func encodeJPEG(w io.Writer, m image.Image, opts img.EncodeOptions) error {
	if opts.Quality > 0 {
		return imaging.Encode(w, m, imaging.JPEG, imaging.JPEGQuality(opts.Quality))
	}
	return imaging.Encode(w, m, imaging.JPEG)
}

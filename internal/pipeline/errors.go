package pipeline

import "errors"

// Per-request error taxonomy. In build mode these fail the build; in serve
// mode they produce a 404 plus a logged diagnostic. None of them is ever
// silently defaulted away.
var (
	// ErrMissingPresetParameter: the request carries no 'preset' query
	// parameter.
	ErrMissingPresetParameter = errors.New("missing 'preset' query parameter")

	// ErrUnknownPreset: the named preset does not exist in the manifest.
	ErrUnknownPreset = errors.New("unknown preset")

	// ErrSourceUnavailable: expansion produced no usable canonical entry
	// for the request.
	ErrSourceUnavailable = errors.New("no variant available for source")

	// ErrUnknownVariant: a virtual asset request names an identity this
	// session never registered.
	ErrUnknownVariant = errors.New("unknown variant identity")
)

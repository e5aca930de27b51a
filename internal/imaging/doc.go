// Package imaging defines the contract between the generation engine and
// the pixel-level image processing implementation. The engine treats the
// implementation as a black box: it loads a source into an Image handle,
// chains format/resize/custom operations onto it, and finally asks for the
// encoded bytes. All pixel math lives behind this contract (see the native
// subpackage for the built-in implementation).
package imaging

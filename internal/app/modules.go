package app

import (
	"github.com/vk/imagesetgo/internal/registry"
	"github.com/vk/imagesetgo/modules/blur"
	"github.com/vk/imagesetgo/modules/flip"
	"github.com/vk/imagesetgo/modules/grayscale"
)

// coreModules are the built-in hook modules registered when the caller
// provides none.
var coreModules = []registry.Module{
	&grayscale.Module{},
	&blur.Module{},
	&flip.Module{},
}

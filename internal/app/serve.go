package app

import (
	"context"

	"github.com/vk/imagesetgo/internal/diskcache"
	"github.com/vk/imagesetgo/internal/pipeline"
	"github.com/vk/imagesetgo/internal/server"
)

// serve runs the dev server: descriptors are computed per request and
// variant bytes are generated on demand when their virtual URL is fetched.
func (a *App) serve(ctx context.Context, store *diskcache.Store) error {
	gen := pipeline.NewGenerator(pipeline.Options{
		Mode:     pipeline.ModeServe,
		Root:     a.model.Options.Root,
		BasePath: a.model.Options.BasePath,
		Loader:   a.loader,
		Store:    store,
		Presets:  a.model.Presets,
		Hooks:    a.registry,
	})

	srv, err := server.New(a.config.ListenAddr, gen, a.logger)
	if err != nil {
		return err
	}
	a.logger.Info("🩺 Dev server starting.", "address", a.config.ListenAddr)
	return srv.ListenAndServe(ctx)
}

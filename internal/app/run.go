package app

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vk/imagesetgo/internal/ctxlog"
	"github.com/vk/imagesetgo/internal/diskcache"
	"github.com/vk/imagesetgo/internal/pipeline"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	store, err := diskcache.New(a.model.Options.CacheDir)
	if err != nil {
		return fmt.Errorf("failed to open variant cache: %w", err)
	}

	if a.config.Serve {
		return a.serve(ctx, store)
	}
	return a.build(ctx, store)
}

// build processes every image request, emits the descriptor modules and
// assets, and reconciles the durable cache against the emitted set.
func (a *App) build(ctx context.Context, store *diskcache.Store) error {
	gen := pipeline.NewGenerator(pipeline.Options{
		Mode:     pipeline.ModeBuild,
		Root:     a.model.Options.Root,
		BasePath: a.model.Options.BasePath,
		Loader:   a.loader,
		Store:    store,
		Presets:  a.model.Presets,
		Hooks:    a.registry,
	})

	a.logger.Info("🚀 Starting build.", "images", len(a.model.Images), "workers", a.config.WorkerCount)

	descriptors := make([]*pipeline.Descriptor, len(a.model.Images))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.config.WorkerCount)
	for i, img := range a.model.Images {
		i, img := i, img
		eg.Go(func() error {
			req := pipeline.Request{
				Path:  img.Source,
				Query: url.Values{"preset": {img.Preset}},
			}
			desc, err := gen.Generate(egCtx, req)
			if err != nil {
				return fmt.Errorf("image %q: %w", img.Name, err)
			}
			descriptors[i] = desc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if err := a.emit(ctx, gen, descriptors); err != nil {
		return err
	}

	// Reconcile last, once the final referenced asset set is known.
	if err := store.Purge(ctx, gen.AssetNames()); err != nil {
		return err
	}

	a.logger.Info("🏁 Build finished.", "assets", len(gen.AssetNames()))
	return nil
}

// emit writes descriptor modules and materialized assets into the output
// directory.
func (a *App) emit(ctx context.Context, gen *pipeline.Generator, descriptors []*pipeline.Descriptor) error {
	outDir := a.model.Options.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	for i, desc := range descriptors {
		src, err := desc.ModuleSource()
		if err != nil {
			return err
		}
		name := a.model.Images[i].Name + ".imageset.js"
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(src), 0o644); err != nil {
			return fmt.Errorf("failed to write descriptor module %s: %w", name, err)
		}
		a.logger.Debug("Descriptor module written.", "module", name)
	}

	for _, asset := range gen.Assets() {
		if err := os.WriteFile(filepath.Join(outDir, asset.FileName), asset.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write asset %s: %w", asset.FileName, err)
		}
	}

	ctxlog.FromContext(ctx).Info("Output emitted.", "dir", outDir, "modules", len(descriptors), "assets", len(gen.Assets()))
	return nil
}

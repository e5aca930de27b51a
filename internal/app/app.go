package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/imagesetgo/internal/config"
	"github.com/vk/imagesetgo/internal/ctxlog"
	"github.com/vk/imagesetgo/internal/imaging"
	"github.com/vk/imagesetgo/internal/imaging/native"
	"github.com/vk/imagesetgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	model    *config.Model
	registry *registry.Registry
	loader   imaging.Loader
}

// New is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, loaded
// manifest model and populated hook registry.
func New(outW io.Writer, appConfig *Config, configLoader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// A failure to load the manifest is a fatal startup error.
	model, err := configLoader.Load(ctx, appConfig.ManifestPath)
	if err != nil {
		panic(fmt.Errorf("failed to load manifest: %w", err))
	}
	logger.Debug("Manifest loaded and translated into unified model.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All hook modules registered.", "count", len(modules))

	// A preset referencing an unregistered hook is a mismatch between code
	// and manifest, so we fail fast.
	if err := reg.Validate(model); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		model:    model,
		registry: reg,
		loader:   native.NewLoader(),
	}
}

// WithImageLoader replaces the imaging implementation, primarily for tests.
func (a *App) WithImageLoader(loader imaging.Loader) *App {
	a.loader = loader
	return a
}

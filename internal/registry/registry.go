package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/imagesetgo/internal/config"
	"github.com/vk/imagesetgo/internal/imaging"
)

// Module is the interface all hook modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// BuildFunc validates a hook's arguments and returns the transform the
// pipeline appends after format conversion and resizing. Building happens
// once per preset resolution, not once per variant.
type BuildFunc func(ctx context.Context, args map[string]cty.Value) (imaging.Transform, error)

// RegisteredHook is one named hook's compiled Go parts.
type RegisteredHook struct {
	Description string
	Build       BuildFunc
}

// Registry holds all registered hooks for a single application instance.
type Registry struct {
	hooks map[string]*RegisteredHook
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{hooks: make(map[string]*RegisteredHook)}
}

// RegisterHook registers a hook under its manifest name. Registering the
// same name twice is a programmer error.
func (r *Registry) RegisterHook(name string, hook *RegisteredHook) {
	if _, exists := r.hooks[name]; exists {
		panic(fmt.Sprintf("hook with name '%s' already registered", name))
	}
	slog.Debug("Registering hook.", "name", name)
	r.hooks[name] = hook
}

// Hook looks up a registered hook by name.
func (r *Registry) Hook(name string) (*RegisteredHook, bool) {
	h, ok := r.hooks[name]
	return h, ok
}

// Len reports the number of registered hooks.
func (r *Registry) Len() int {
	return len(r.hooks)
}

// Validate checks that every hook a preset references is registered. This
// runs at startup so a typo in the manifest fails fast, not mid-build.
func (r *Registry) Validate(model *config.Model) error {
	for name, def := range model.Presets {
		if def.Hook == "" {
			continue
		}
		if _, ok := r.hooks[def.Hook]; !ok {
			return fmt.Errorf("preset %q references unknown hook %q", name, def.Hook)
		}
	}
	return nil
}

// ResolveHook builds the transform for a preset's hook, or returns nil when
// the preset declares none.
func (r *Registry) ResolveHook(ctx context.Context, def *config.PresetDefinition) (imaging.Transform, error) {
	if def.Hook == "" {
		return nil, nil
	}
	hook, ok := r.hooks[def.Hook]
	if !ok {
		return nil, fmt.Errorf("preset %q references unknown hook %q", def.Name, def.Hook)
	}
	transform, err := hook.Build(ctx, def.HookArgs)
	if err != nil {
		return nil, fmt.Errorf("failed to build hook %q for preset %q: %w", def.Hook, def.Name, err)
	}
	return transform, nil
}

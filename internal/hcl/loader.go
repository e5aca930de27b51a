package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/imagesetgo/internal/config"
	"github.com/vk/imagesetgo/internal/ctxlog"
	"github.com/vk/imagesetgo/internal/fsutil"
)

// Loader is the HCL implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every manifest file under the given paths, merges them into a
// single model, applies defaults and validates the result.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := collectFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl manifest files found in %v", paths)
	}
	logger.Debug("Found manifest files to load.", "files", files)

	model := &config.Model{
		Presets: make(map[string]*config.PresetDefinition),
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", file, diags)
		}

		var schema manifestSchema
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &schema); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest %s: %w", file, diags)
		}

		if err := l.merge(model, &schema, file); err != nil {
			return nil, err
		}
		logger.Debug("Manifest file loaded.", "file", file)
	}

	model.ApplyDefaults()
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	logger.Info("Manifest loaded.", "presets", len(model.Presets), "images", len(model.Images))
	return model, nil
}

// collectFiles expands each path into manifest files: directories are
// searched recursively for .hcl files, plain files are taken as-is.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat manifest path %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := fsutil.FindFilesByExtension(p, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to search manifest directory %s: %w", p, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

// merge translates one file's blocks into the model, rejecting collisions
// across files.
func (l *Loader) merge(model *config.Model, schema *manifestSchema, file string) error {
	if schema.Options != nil {
		if model.Options != nil {
			return fmt.Errorf("manifest %s: duplicate options block (already defined elsewhere)", file)
		}
		model.Options = &config.Options{
			Root:      schema.Options.Root,
			OutputDir: schema.Options.OutputDir,
			CacheDir:  schema.Options.CacheDir,
			BasePath:  schema.Options.BasePath,
		}
	}

	for _, p := range schema.Presets {
		if _, exists := model.Presets[p.Name]; exists {
			return fmt.Errorf("manifest %s: duplicate preset %q", file, p.Name)
		}
		def, err := l.translatePreset(p)
		if err != nil {
			return fmt.Errorf("manifest %s: preset %q: %w", file, p.Name, err)
		}
		model.Presets[p.Name] = def
	}

	for _, img := range schema.Images {
		model.Images = append(model.Images, &config.ImageRequest{
			Name:   img.Name,
			Source: img.Source,
			Preset: img.Preset,
		})
	}
	return nil
}

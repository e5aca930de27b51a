package testutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates a file with the given content under dir, failing the
// test on error.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteManifest writes an HCL manifest file and returns its path.
func WriteManifest(t *testing.T, dir, content string) string {
	t.Helper()
	return WriteFile(t, dir, "manifest.hcl", []byte(content))
}

// WritePNG encodes a solid-color PNG of the given size, for tests that
// need a genuinely decodable source image.
func WritePNG(t *testing.T, dir, name string, width, height int) string {
	t.Helper()
	m := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Set(x, y, color.RGBA{R: 200, G: 30, B: 60, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, m); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
	return path
}

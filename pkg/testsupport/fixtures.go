package testsupport

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-synthgen/pkg/catalog"
	"github.com/goliatone/go-synthgen/pkg/config"
)

// Context returns a background context for contract tests, centralized so
// deadline policy can change in one place.
func Context() context.Context {
	return context.Background()
}

// Config returns a validated configuration pointed at temporary directories.
// Tests mutate the copy freely. Testing helpers fail the test on error to
// keep pipeline tests concise.
func Config(t *testing.T) config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.ModelsDir = ModelsDir(t, map[string][]string{
		"ulus": {"ulu_01.glb", "ulu_02.glb"},
	})
	cfg.OutputDir = t.TempDir()
	cfg.NumImages = 5
	cfg.MaxObjectsPerScene = 1
	cfg.Workers = 1
	cfg.Render.Resolution = config.Resolution{Width: 64, Height: 64}
	cfg.Render.Samples = 1
	cfg.Render.Format = "png"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("fixture config is invalid: %v", err)
	}
	return cfg
}

// ModelsDir materializes a class→assets layout under a temp directory and
// returns its path. Asset files are empty; discovery only reads names.
func ModelsDir(t *testing.T, classes map[string][]string) string {
	t.Helper()

	root := t.TempDir()
	for class, assets := range classes {
		dir := filepath.Join(root, class)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create class dir: %v", err)
		}
		for _, asset := range assets {
			if err := os.WriteFile(filepath.Join(dir, asset), nil, 0o644); err != nil {
				t.Fatalf("create asset: %v", err)
			}
		}
	}
	return root
}

// FlatImage returns a uniformly gray RGBA image.
func FlatImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	return img
}

// Catalog discovers a catalog from a class→assets layout.
func Catalog(t *testing.T, classes map[string][]string) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.Discover(ModelsDir(t, classes))
	if err != nil {
		t.Fatalf("discover catalog: %v", err)
	}
	return cat
}

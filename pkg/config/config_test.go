package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func validConfig() Config {
	cfg := Default()
	cfg.ModelsDir = "models"
	cfg.OutputDir = "out"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing models dir", func(c *Config) { c.ModelsDir = "" }, "models_dir"},
		{"missing output dir", func(c *Config) { c.OutputDir = "" }, "output_dir"},
		{"zero images", func(c *Config) { c.NumImages = 0 }, "num_images"},
		{"zero max objects", func(c *Config) { c.MaxObjectsPerScene = 0 }, "max_objects_per_scene"},
		{"inverted range", func(c *Config) { c.Randomization.ObjectScale = Range{Min: 2, Max: 1} }, "randomization.object_scale"},
		{"zero resolution", func(c *Config) { c.Render.Resolution.Width = 0 }, "render.resolution"},
		{"bad engine", func(c *Config) { c.Render.Engine = "LUXRENDER" }, "render.engine"},
		{"bad format", func(c *Config) { c.Annotation.Format = "pascal_voc" }, "annotation.format"},
		{"visibility above one", func(c *Config) { c.Annotation.MinVisibility = 1.5 }, "annotation.min_visibility"},
		{"splits do not sum", func(c *Config) { c.Splits = Splits{Train: 0.5, Val: 0.2, Test: 0.2} }, "splits"},
		{"negative split", func(c *Config) { c.Splits = Splits{Train: 1.2, Val: -0.1, Test: -0.1} }, "splits"},
		{"zero placement attempts", func(c *Config) { c.MaxPlacementAttempts = 0 }, "max_placement_attempts"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *config.Error, got %T: %v", err, err)
			}
			if cerr.Field != tc.field {
				t.Fatalf("expected field %q, got %q (%v)", tc.field, cerr.Field, err)
			}
		})
	}
}

func TestParse_OverlaysDefaults(t *testing.T) {
	doc := strings.Join([]string{
		"models_dir: assets/models",
		"output_dir: out/dataset",
		"num_images: 12",
		"engine_timeout: 5s",
		"splits:",
		"  train: 0.7",
		"  val: 0.2",
		"  test: 0.1",
	}, "\n")

	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.NumImages != 12 {
		t.Fatalf("expected num_images 12, got %d", cfg.NumImages)
	}
	if time.Duration(cfg.EngineTimeout) != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", time.Duration(cfg.EngineTimeout))
	}
	// Untouched fields keep their defaults.
	if cfg.Render.Engine != "CYCLES" {
		t.Fatalf("expected default engine, got %q", cfg.Render.Engine)
	}
	if diff := cmp.Diff(Splits{Train: 0.7, Val: 0.2, Test: 0.1}, cfg.Splits); diff != "" {
		t.Fatalf("splits mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_InvalidRejected(t *testing.T) {
	doc := "models_dir: m\noutput_dir: o\nnum_images: 0\n"
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected invalid configuration to be rejected")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	cfg := validConfig()
	cfg.NumImages = 42
	cfg.Seed = 7

	path := t.TempDir() + "/config.yaml"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

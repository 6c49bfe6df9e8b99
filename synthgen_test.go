package synthgen_test

import (
	"path/filepath"
	"testing"

	synthgen "github.com/goliatone/go-synthgen"
	"github.com/goliatone/go-synthgen/pkg/dataset"
	"github.com/goliatone/go-synthgen/pkg/engine"
	"github.com/goliatone/go-synthgen/pkg/testsupport"
)

func TestGenerate(t *testing.T) {
	cfg := testsupport.Config(t)
	cfg.NumImages = 3

	summary, err := synthgen.Generate(testsupport.Context(), cfg, engine.SyntheticFactory())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if summary.Succeeded != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	records, err := dataset.ReadManifest(filepath.Join(cfg.OutputDir, dataset.ManifestName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	cfg := synthgen.DefaultConfig()
	// Missing models/output directories.
	if _, err := synthgen.Generate(testsupport.Context(), cfg, engine.SyntheticFactory()); err == nil {
		t.Fatal("expected validation error")
	}
}

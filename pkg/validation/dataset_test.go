package validation_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-synthgen/pkg/annotate"
	"github.com/goliatone/go-synthgen/pkg/dataset"
	"github.com/goliatone/go-synthgen/pkg/testsupport"
	"github.com/goliatone/go-synthgen/pkg/validation"
	"github.com/goliatone/go-synthgen/pkg/writers/yolo"
)

// buildDataset writes a small mixed dataset: one labeled sample, one
// background-only.
func buildDataset(t *testing.T) string {
	t.Helper()

	cfg := testsupport.Config(t)
	cfg.NumImages = 2

	asm, err := dataset.New(cfg, []string{"ulus"}, yolo.New())
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}
	defer asm.Close()

	boxes := []annotate.Box{{ClassID: 0, XCenter: 0.5, YCenter: 0.5, Width: 0.25, Height: 0.25, Visibility: 1}}
	if _, err := asm.Add(testsupport.FlatImage(32, 32), boxes, 1); err != nil {
		t.Fatalf("add labeled: %v", err)
	}
	if _, err := asm.Add(testsupport.FlatImage(32, 32), nil, 2); err != nil {
		t.Fatalf("add background: %v", err)
	}
	return cfg.OutputDir
}

func TestValidateDataset(t *testing.T) {
	dir := buildDataset(t)

	report, err := validation.ValidateDataset(dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.Valid {
		t.Fatalf("expected valid dataset, issues: %+v", report.Issues)
	}
	if report.Samples != 2 || report.BackgroundOnly != 1 || report.Boxes != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	total := 0
	for _, n := range report.PerSplit {
		total += n
	}
	if total != 2 {
		t.Fatalf("every sample must be in exactly one split, got %+v", report.PerSplit)
	}
}

func TestValidateDataset_MissingImage(t *testing.T) {
	dir := buildDataset(t)

	records, err := dataset.ReadManifest(filepath.Join(dir, dataset.ManifestName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, records[0].ImagePath)); err != nil {
		t.Fatalf("remove image: %v", err)
	}

	report, err := validation.ValidateDataset(dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.Valid || len(report.Issues) == 0 {
		t.Fatalf("expected missing-image issue, got %+v", report)
	}
}

func TestValidateDataset_CorruptLabel(t *testing.T) {
	dir := buildDataset(t)

	records, err := dataset.ReadManifest(filepath.Join(dir, dataset.ManifestName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var labeled dataset.Record
	for _, rec := range records {
		if rec.LabelPath != "" {
			labeled = rec
		}
	}

	bad := "7 0.5 0.5 0.25 0.25\n0 1.5 0.5 0.25 0.25\n"
	if err := os.WriteFile(filepath.Join(dir, labeled.LabelPath), []byte(bad), 0o644); err != nil {
		t.Fatalf("corrupt label: %v", err)
	}

	report, err := validation.ValidateDataset(dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.Valid {
		t.Fatal("expected corrupt label to fail validation")
	}
	// Out-of-range class id, a 4-field line, and a box-count mismatch.
	if len(report.Issues) < 3 {
		t.Fatalf("expected at least 3 issues, got %+v", report.Issues)
	}
}

func TestValidateDataset_Empty(t *testing.T) {
	if _, err := validation.ValidateDataset(t.TempDir()); err == nil {
		t.Fatal("expected error for a directory with no dataset")
	}
}

func TestVisualize(t *testing.T) {
	dir := buildDataset(t)
	outDir := filepath.Join(t.TempDir(), "viz")

	written, err := validation.Visualize(dir, outDir)
	if err != nil {
		t.Fatalf("visualize: %v", err)
	}
	if written != 1 {
		t.Fatalf("expected 1 visualization (background-only skipped), got %d", written)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".png" {
		t.Fatalf("unexpected visualization output: %v", entries)
	}
}

// Package dataset is the assembly layer: it partitions generated samples
// into train/val/test splits from a seeded plan, writes images and label
// files under deterministic collision-free names, and keeps an append-only
// manifest that makes partial runs resumable.
package dataset

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/goliatone/go-synthgen/pkg/annotate"
	"github.com/goliatone/go-synthgen/pkg/config"
)

// ClassesName is the class table file written at the output root. Line
// number equals class id.
const ClassesName = "classes.txt"

// ConfigName is the configuration snapshot written at the output root.
const ConfigName = "config.yaml"

// Assembler accumulates (image, boxes) pairs into the on-disk dataset
// layout. It is the single writer for the manifest; Add may be called from
// one goroutine at a time and is internally serialized besides.
type Assembler struct {
	mu sync.Mutex

	outputDir string
	classes   []string
	writer    annotate.Writer
	manifest  *Manifest
	plan      []Split
	next      int

	encoder  imgio.Encoder
	imageExt string
}

// New prepares the output directory for a run: creates the split layout,
// persists the class table and the configuration snapshot, and loads any
// existing manifest so a re-invocation resumes numbering where the previous
// run stopped. The split plan is derived from the run seed, so the resumed
// run assigns every remaining sample to the same split the original run
// would have.
func New(cfg config.Config, classes []string, writer annotate.Writer) (*Assembler, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("dataset: class table is empty")
	}
	if writer == nil {
		return nil, fmt.Errorf("dataset: label writer is required")
	}

	encoder, ext, err := imageEncoder(cfg.Render)
	if err != nil {
		return nil, err
	}

	for _, split := range SplitNames() {
		for _, sub := range []string{"images", "labels"} {
			dir := filepath.Join(cfg.OutputDir, string(split), sub)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("dataset: create %s: %w", dir, err)
			}
		}
	}

	table := strings.Join(classes, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(cfg.OutputDir, ClassesName), []byte(table), 0o644); err != nil {
		return nil, fmt.Errorf("dataset: write class table: %w", err)
	}
	if err := config.Save(cfg, filepath.Join(cfg.OutputDir, ConfigName)); err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(cfg.OutputDir, ManifestName)
	existing, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	manifest, err := OpenManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	return &Assembler{
		outputDir: cfg.OutputDir,
		classes:   classes,
		writer:    writer,
		manifest:  manifest,
		plan:      Plan(cfg.NumImages, cfg.Splits, cfg.Seed),
		next:      len(existing),
		encoder:   encoder,
		imageExt:  ext,
	}, nil
}

// StartIndex is the index the next Add will use.
func (a *Assembler) StartIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}

// Remaining is how many samples the plan still has room for.
func (a *Assembler) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.next >= len(a.plan) {
		return 0
	}
	return len(a.plan) - a.next
}

// Classes returns the class table in id order.
func (a *Assembler) Classes() []string {
	return a.classes
}

// Add persists one sample: the image always, the label file only when at
// least one box survived annotation. Zero-box samples are recorded in the
// manifest as background-only. The manifest line is appended last, so a
// sample is either fully present or absent from the manifest.
func (a *Assembler) Add(img image.Image, boxes []annotate.Box, seed uint64) (Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.next >= len(a.plan) {
		return Record{}, fmt.Errorf("dataset: split plan exhausted after %d samples", len(a.plan))
	}
	if img == nil {
		return Record{}, fmt.Errorf("dataset: image is required")
	}

	index := a.next
	split := a.plan[index]
	name := fmt.Sprintf("%s_%06d", split, index)

	rec := Record{
		Index:          index,
		Name:           name,
		Split:          split,
		Seed:           seed,
		ImagePath:      filepath.Join(string(split), "images", name+a.imageExt),
		Boxes:          len(boxes),
		BackgroundOnly: len(boxes) == 0,
	}

	if err := imgio.Save(filepath.Join(a.outputDir, rec.ImagePath), img, a.encoder); err != nil {
		return Record{}, fmt.Errorf("dataset: write image %s: %w", rec.ImagePath, err)
	}

	if len(boxes) > 0 {
		bounds := img.Bounds()
		data, err := a.writer.Write(boxes, a.classes, bounds.Dx(), bounds.Dy())
		if err != nil {
			return Record{}, err
		}
		rec.LabelPath = filepath.Join(string(split), "labels", name+a.writer.Extension())
		if err := os.WriteFile(filepath.Join(a.outputDir, rec.LabelPath), data, 0o644); err != nil {
			return Record{}, fmt.Errorf("dataset: write label %s: %w", rec.LabelPath, err)
		}
	}

	if err := a.manifest.Append(rec); err != nil {
		return Record{}, err
	}
	a.next++
	return rec, nil
}

// Close releases the manifest file handle.
func (a *Assembler) Close() error {
	return a.manifest.Close()
}

func imageEncoder(cfg config.Render) (imgio.Encoder, string, error) {
	switch cfg.Format {
	case "jpeg", "":
		quality := cfg.Quality
		if quality <= 0 {
			quality = 90
		}
		return imgio.JPEGEncoder(quality), ".jpg", nil
	case "png":
		return imgio.PNGEncoder(), ".png", nil
	default:
		return nil, "", fmt.Errorf("dataset: unsupported image format %q", cfg.Format)
	}
}

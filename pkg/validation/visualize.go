package validation

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/goliatone/go-synthgen/pkg/dataset"
)

// outlineColors cycles per class id so overlapping boxes stay readable.
var outlineColors = []color.RGBA{
	{R: 230, G: 57, B: 70, A: 255},
	{R: 69, G: 123, B: 157, A: 255},
	{R: 42, G: 157, B: 143, A: 255},
	{R: 233, G: 196, B: 106, A: 255},
}

// Visualize renders every labeled sample with its box outlines drawn on top
// and writes the result as PNGs into outDir. It returns the number of images
// written. Background-only samples are skipped.
func Visualize(dir, outDir string) (int, error) {
	records, err := dataset.ReadManifest(filepath.Join(dir, dataset.ManifestName))
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("validation: create %s: %w", outDir, err)
	}

	written := 0
	for _, rec := range records {
		if rec.LabelPath == "" {
			continue
		}

		img, err := imgio.Open(filepath.Join(dir, rec.ImagePath))
		if err != nil {
			return written, fmt.Errorf("validation: open image for %s: %w", rec.Name, err)
		}
		boxes, err := parseLabelFile(filepath.Join(dir, rec.LabelPath))
		if err != nil {
			return written, fmt.Errorf("validation: %s: %w", rec.Name, err)
		}

		canvas := image.NewRGBA(img.Bounds())
		draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)
		for _, b := range boxes {
			drawOutline(canvas, b, outlineColors[b.classID%len(outlineColors)])
		}

		out := filepath.Join(outDir, rec.Name+".png")
		if err := imgio.Save(out, canvas, imgio.PNGEncoder()); err != nil {
			return written, fmt.Errorf("validation: write %s: %w", out, err)
		}
		written++
	}
	return written, nil
}

type labelBox struct {
	classID int
	x, y    float64
	w, h    float64
}

func parseLabelFile(path string) ([]labelBox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var boxes []labelBox
	for n, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("label line %d: expected 5 fields, got %d", n+1, len(fields))
		}
		var b labelBox
		if b.classID, err = strconv.Atoi(fields[0]); err != nil {
			return nil, fmt.Errorf("label line %d: %w", n+1, err)
		}
		values := []*float64{&b.x, &b.y, &b.w, &b.h}
		for i, dst := range values {
			if *dst, err = strconv.ParseFloat(fields[i+1], 64); err != nil {
				return nil, fmt.Errorf("label line %d: %w", n+1, err)
			}
		}
		boxes = append(boxes, b)
	}
	return boxes, nil
}

// drawOutline traces a 2px rectangle in pixel space.
func drawOutline(img *image.RGBA, b labelBox, c color.RGBA) {
	bounds := img.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	x0 := int((b.x - b.w/2) * w)
	y0 := int((b.y - b.h/2) * h)
	x1 := int((b.x + b.w/2) * w)
	y1 := int((b.y + b.h/2) * h)

	for t := 0; t < 2; t++ {
		for x := x0; x <= x1; x++ {
			setPixel(img, x, y0+t, c)
			setPixel(img, x, y1-t, c)
		}
		for y := y0; y <= y1; y++ {
			setPixel(img, x0+t, y, c)
			setPixel(img, x1-t, y, c)
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

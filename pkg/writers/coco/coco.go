// Package coco emits annotations as a per-image JSON document using COCO
// conventions: pixel-space `[x, y, width, height]` boxes and 1-based
// category ids, with the category list inlined so each file stands alone.
package coco

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-synthgen/pkg/annotate"
)

// Name identifies this writer in the registry and configuration.
const Name = "coco"

type Writer struct{}

// New creates a COCO label writer.
func New() *Writer {
	return &Writer{}
}

func (w *Writer) Name() string { return Name }

func (w *Writer) Extension() string { return ".json" }

type document struct {
	Image       imageInfo    `json:"image"`
	Annotations []annotation `json:"annotations"`
	Categories  []category   `json:"categories"`
}

type imageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type annotation struct {
	ID         int        `json:"id"`
	CategoryID int        `json:"category_id"`
	BBox       [4]float32 `json:"bbox"`
	Area       float32    `json:"area"`
	Visibility float32    `json:"visibility"`
}

type category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Write renders one label document. Category ids are the class ids shifted
// by one, matching the COCO convention of 1-based categories.
func (w *Writer) Write(boxes []annotate.Box, classes []string, width, height int) ([]byte, error) {
	doc := document{
		Image:       imageInfo{Width: width, Height: height},
		Annotations: make([]annotation, 0, len(boxes)),
		Categories:  make([]category, 0, len(classes)),
	}
	for id, name := range classes {
		doc.Categories = append(doc.Categories, category{ID: id + 1, Name: name})
	}
	for i, box := range boxes {
		if box.ClassID < 0 || box.ClassID >= len(classes) {
			return nil, fmt.Errorf("coco: class id %d out of range [0,%d)", box.ClassID, len(classes))
		}
		x0, y0, x1, y1 := box.PixelRect(width, height)
		doc.Annotations = append(doc.Annotations, annotation{
			ID:         i + 1,
			CategoryID: box.ClassID + 1,
			BBox:       [4]float32{x0, y0, x1 - x0, y1 - y0},
			Area:       (x1 - x0) * (y1 - y0),
			Visibility: box.Visibility,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Package yolo emits annotations in the darknet text format: one line per
// box, `class_id x_center y_center width height`, all coordinates normalized
// to [0,1] with six decimal places.
package yolo

import (
	"bytes"
	"fmt"

	"github.com/goliatone/go-synthgen/pkg/annotate"
)

// Name identifies this writer in the registry and configuration.
const Name = "yolo"

type Writer struct{}

// New creates a YOLO label writer.
func New() *Writer {
	return &Writer{}
}

func (w *Writer) Name() string { return Name }

func (w *Writer) Extension() string { return ".txt" }

// Write renders one label file. Classes and image dimensions are unused:
// the format is per-image and already normalized.
func (w *Writer) Write(boxes []annotate.Box, classes []string, width, height int) ([]byte, error) {
	var buf bytes.Buffer
	for _, box := range boxes {
		if box.ClassID < 0 {
			return nil, fmt.Errorf("yolo: negative class id %d", box.ClassID)
		}
		fmt.Fprintf(&buf, "%d %.6f %.6f %.6f %.6f\n",
			box.ClassID, box.XCenter, box.YCenter, box.Width, box.Height)
	}
	return buf.Bytes(), nil
}

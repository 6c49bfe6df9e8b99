package coco_test

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-synthgen/pkg/annotate"
	"github.com/goliatone/go-synthgen/pkg/writers/coco"
)

func TestWriter_Write(t *testing.T) {
	writer := coco.New()

	boxes := []annotate.Box{
		{ClassID: 2, XCenter: 0.5, YCenter: 0.5, Width: 0.5, Height: 0.25, Visibility: 1},
	}
	classes := []string{"bowls", "harpoons", "ulus"}

	out, err := writer.Write(boxes, classes, 640, 480)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	var doc struct {
		Image struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"image"`
		Annotations []struct {
			ID         int        `json:"id"`
			CategoryID int        `json:"category_id"`
			BBox       [4]float32 `json:"bbox"`
			Area       float32    `json:"area"`
		} `json:"annotations"`
		Categories []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"categories"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if doc.Image.Width != 640 || doc.Image.Height != 480 {
		t.Fatalf("unexpected image info %+v", doc.Image)
	}
	if len(doc.Categories) != 3 || doc.Categories[2].ID != 3 || doc.Categories[2].Name != "ulus" {
		t.Fatalf("unexpected categories %+v", doc.Categories)
	}
	if len(doc.Annotations) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(doc.Annotations))
	}

	ann := doc.Annotations[0]
	if ann.CategoryID != 3 {
		t.Fatalf("expected 1-based category id 3, got %d", ann.CategoryID)
	}
	// 0.5 center, 0.5 width of 640 → x0 = 160, w = 320.
	want := [4]float32{160, 180, 320, 120}
	if ann.BBox != want {
		t.Fatalf("expected bbox %v, got %v", want, ann.BBox)
	}
	if ann.Area != 320*120 {
		t.Fatalf("expected area %v, got %v", 320*120, ann.Area)
	}
}

func TestWriter_ClassIDOutOfRange(t *testing.T) {
	writer := coco.New()

	_, err := writer.Write([]annotate.Box{{ClassID: 5}}, []string{"ulus"}, 640, 480)
	if err == nil {
		t.Fatal("expected error for class id outside the category list")
	}
}

func TestWriter_Metadata(t *testing.T) {
	writer := coco.New()
	if writer.Name() != "coco" {
		t.Fatalf("unexpected name %q", writer.Name())
	}
	if writer.Extension() != ".json" {
		t.Fatalf("unexpected extension %q", writer.Extension())
	}
}

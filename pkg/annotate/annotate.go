// Package annotate is the 3D→2D annotation engine: it projects each placed
// object's oriented bounds through the camera transforms used for the
// render, clips against the image frame, applies the visibility policy, and
// emits normalized bounding boxes. It has no randomness and is pure given
// its input.
package annotate

import (
	"fmt"

	"github.com/chewxy/math32"
	"goki.dev/mat32/v2"

	"github.com/goliatone/go-synthgen/pkg/config"
	"github.com/goliatone/go-synthgen/pkg/engine"
	"github.com/goliatone/go-synthgen/pkg/scene"
)

// Engine computes bounding boxes from resolved placements.
type Engine struct {
	minVisibility float32
	minBoxArea    float32
}

// New builds an annotation engine from the annotation configuration.
func New(cfg config.Annotation) *Engine {
	return &Engine{
		minVisibility: cfg.MinVisibility,
		minBoxArea:    float32(cfg.MinBoxArea),
	}
}

// Annotate projects every placed object and returns the boxes that survive
// the visibility policy. Poses are parallel to the recipe's object list; a
// length mismatch means the engine response is unusable. A result with zero
// boxes is not an error — the sample is background-only.
func (e *Engine) Annotate(recipe scene.Recipe, result engine.PlacementResult) ([]Box, error) {
	if len(result.Poses) != len(recipe.Objects) {
		return nil, fmt.Errorf("annotate: engine returned %d poses for %d objects",
			len(result.Poses), len(recipe.Objects))
	}
	if result.Width < 1 || result.Height < 1 {
		return nil, fmt.Errorf("annotate: invalid image size %dx%d", result.Width, result.Height)
	}

	boxes := make([]Box, 0, len(result.Poses))
	for i, pose := range result.Poses {
		box, ok := e.project(pose, result.Camera, result.Width, result.Height)
		if !ok {
			continue
		}
		box.ClassID = recipe.Objects[i].ClassID
		box.Class = recipe.Objects[i].Class
		boxes = append(boxes, box)
	}
	return boxes, nil
}

// project runs one object through the projection pipeline. The returned bool
// is false when the object produces no annotation: all corners behind the
// camera, a zero-area (edge-on) projection, or a visible fraction below the
// configured threshold. The threshold is inclusive — a fraction exactly at
// the minimum is retained.
func (e *Engine) project(pose engine.ObjectPose, cam engine.CameraMatrices, width, height int) (Box, bool) {
	var model mat32.Mat4
	model.SetTransform(pose.Position, pose.Rotation, pose.Scale)

	var viewProj mat32.Mat4
	viewProj.MulMatrices(&cam.Projection, &cam.View)
	var mvp mat32.Mat4
	mvp.MulMatrices(&viewProj, &model)

	w := float32(width)
	h := float32(height)

	minX := math32.Inf(1)
	minY := math32.Inf(1)
	maxX := math32.Inf(-1)
	maxY := math32.Inf(-1)
	visible := 0

	for _, corner := range boundsCorners(pose.Bounds) {
		clip := mat32.Vec4{X: corner.X, Y: corner.Y, Z: corner.Z, W: 1}.MulMat4(&mvp)
		// Non-positive depth is behind the camera; non-finite coordinates
		// are treated the same way.
		if clip.W <= 0 || !finite(clip.X) || !finite(clip.Y) || !finite(clip.W) {
			continue
		}
		ndc := clip.PerspDiv()

		px := (ndc.X + 1) * 0.5 * w
		py := (1 - ndc.Y) * 0.5 * h
		if !finite(px) || !finite(py) {
			continue
		}

		minX = math32.Min(minX, px)
		maxX = math32.Max(maxX, px)
		minY = math32.Min(minY, py)
		maxY = math32.Max(maxY, py)
		visible++
	}
	if visible == 0 {
		return Box{}, false
	}

	fullW := maxX - minX
	fullH := maxY - minY
	fullArea := fullW * fullH
	if fullArea <= 0 {
		// Exactly edge-on projection.
		return Box{}, false
	}

	clipMinX := math32.Max(minX, 0)
	clipMinY := math32.Max(minY, 0)
	clipMaxX := math32.Min(maxX, w)
	clipMaxY := math32.Min(maxY, h)

	clipW := clipMaxX - clipMinX
	clipH := clipMaxY - clipMinY
	if clipW <= 0 || clipH <= 0 {
		return Box{}, false
	}

	clipArea := clipW * clipH
	fraction := clipArea / fullArea
	if fraction < e.minVisibility {
		return Box{}, false
	}
	if clipArea < e.minBoxArea {
		return Box{}, false
	}

	return Box{
		XCenter:    (clipMinX + clipMaxX) / 2 / w,
		YCenter:    (clipMinY + clipMaxY) / 2 / h,
		Width:      clipW / w,
		Height:     clipH / h,
		Visibility: math32.Min(fraction, 1),
	}, true
}

// boundsCorners expands a local-space bounding box into its 8 corners.
func boundsCorners(b mat32.Box3) [8]mat32.Vec3 {
	return [8]mat32.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

package engine

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"goki.dev/mat32/v2"
)

// Synthetic is a deterministic in-process Session used when no external
// engine adapter is configured: dry runs, CI, and the pipeline tests. Poses
// come straight from the request's drop transforms settled onto the floor
// plane with zero velocity, bounds are a unit cube, and the image is a flat
// fill of the background color, so the same request always yields the same
// result.
type Synthetic struct{}

// NewSynthetic returns a synthetic engine session.
func NewSynthetic() *Synthetic {
	return &Synthetic{}
}

// SyntheticFactory opens synthetic sessions.
func SyntheticFactory() SessionFactory {
	return func(ctx context.Context) (Session, error) {
		return NewSynthetic(), nil
	}
}

// Execute implements Session.
func (s *Synthetic) Execute(ctx context.Context, req SceneRequest) (PlacementResult, error) {
	if err := ctx.Err(); err != nil {
		return PlacementResult{}, err
	}

	width := req.Render.Width
	height := req.Render.Height
	if width < 1 || height < 1 {
		return PlacementResult{}, fmt.Errorf("engine: render resolution %dx%d", width, height)
	}

	poses := make([]ObjectPose, len(req.Objects))
	for i, obj := range req.Objects {
		pos := obj.Position
		pos.Z = 0
		poses[i] = ObjectPose{
			Position: pos,
			Rotation: mat32.NewQuatEuler(obj.Rotation),
			Scale:    mat32.V3(obj.Scale, obj.Scale, obj.Scale),
			Bounds: mat32.Box3{
				Min: mat32.V3(-0.5, -0.5, 0),
				Max: mat32.V3(0.5, 0.5, 1),
			},
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill := color.RGBA{
		R: uint8(req.Background[0] * 255),
		G: uint8(req.Background[1] * 255),
		B: uint8(req.Background[2] * 255),
		A: 255,
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}

	return PlacementResult{
		Poses:  poses,
		Image:  img,
		Camera: req.Camera.Matrices(width, height),
		Width:  width,
		Height: height,
	}, nil
}

// Reset implements Session. The synthetic session keeps no scene state.
func (s *Synthetic) Reset(ctx context.Context) error { return nil }

// Close implements Session.
func (s *Synthetic) Close() error { return nil }

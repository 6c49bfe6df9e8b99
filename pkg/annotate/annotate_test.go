package annotate

import (
	"math"
	"testing"

	"goki.dev/mat32/v2"

	"github.com/goliatone/go-synthgen/pkg/config"
	"github.com/goliatone/go-synthgen/pkg/engine"
	"github.com/goliatone/go-synthgen/pkg/scene"
)

// identityResult wraps poses in a placement result whose camera transforms
// are identity, so object bounds are interpreted directly as NDC and pixel
// math is easy to verify by hand.
func identityResult(width, height int, poses ...engine.ObjectPose) engine.PlacementResult {
	var ident mat32.Mat4
	ident.SetIdentity()
	return engine.PlacementResult{
		Poses:  poses,
		Camera: engine.CameraMatrices{View: ident, Projection: ident},
		Width:  width,
		Height: height,
	}
}

func identityPose(bounds mat32.Box3) engine.ObjectPose {
	var q mat32.Quat
	q.SetIdentity()
	return engine.ObjectPose{
		Rotation: q,
		Scale:    mat32.V3(1, 1, 1),
		Bounds:   bounds,
	}
}

func recipeFor(n int) scene.Recipe {
	objs := make([]scene.ObjectInstance, n)
	for i := range objs {
		objs[i] = scene.ObjectInstance{ClassID: i, Class: "ulus"}
	}
	return scene.Recipe{Objects: objs}
}

func annotationConfig(minVis float32) config.Annotation {
	return config.Annotation{Format: "yolo", MinVisibility: minVis, MinBoxArea: 0}
}

func TestAnnotate_ClipsToFrame(t *testing.T) {
	// Full projected rectangle x∈[-50,150], y∈[-20,90] on a 100×100 image.
	// In identity-camera NDC that is x∈[-2,2], y∈[-0.8,1.4].
	bounds := mat32.Box3{
		Min: mat32.V3(-2, -0.8, 0),
		Max: mat32.V3(2, 1.4, 0.5),
	}

	eng := New(annotationConfig(0.1))
	boxes, err := eng.Annotate(recipeFor(1), identityResult(100, 100, identityPose(bounds)))
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}

	box := boxes[0]
	approx := func(got, want float32) {
		t.Helper()
		if math.Abs(float64(got-want)) > 1e-4 {
			t.Fatalf("expected %v, got %v (box %+v)", want, got, box)
		}
	}
	approx(box.XCenter, 0.5)
	approx(box.YCenter, 0.45)
	approx(box.Width, 1.0)
	approx(box.Height, 0.9)

	// Clipped 100×90 over full 200×110.
	approx(box.Visibility, float32(100*90)/float32(200*110))
}

func TestAnnotate_VisibilityThresholdInclusive(t *testing.T) {
	// Box half off-frame horizontally: full x∈[-100,100], y∈[0,100] →
	// visible fraction exactly 0.5.
	bounds := mat32.Box3{
		Min: mat32.V3(-3, -1, 0),
		Max: mat32.V3(1, 1, 0.5),
	}
	pose := identityPose(bounds)

	atThreshold := New(annotationConfig(0.5))
	boxes, err := atThreshold.Annotate(recipeFor(1), identityResult(100, 100, pose))
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(boxes) != 1 {
		t.Fatalf("fraction exactly at threshold must be retained, got %d boxes", len(boxes))
	}

	aboveThreshold := New(annotationConfig(0.51))
	boxes, err = aboveThreshold.Annotate(recipeFor(1), identityResult(100, 100, pose))
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(boxes) != 0 {
		t.Fatalf("fraction below threshold must be dropped, got %d boxes", len(boxes))
	}
}

func TestAnnotate_BehindCameraDropped(t *testing.T) {
	// With identity matrices clip.W == 1 regardless of position, so use a
	// projection that maps Z into W: a perspective matrix and a pose behind
	// the camera (positive Z in view space).
	cam := engine.CameraSpec{
		Position:    mat32.V3(0, 0, 0),
		Target:      mat32.V3(0, 0, -1),
		Up:          mat32.V3(0, 1, 0),
		FocalLength: 50,
	}.Matrices(100, 100)

	pose := identityPose(mat32.Box3{
		Min: mat32.V3(-0.5, -0.5, -0.5),
		Max: mat32.V3(0.5, 0.5, 0.5),
	})
	pose.Position = mat32.V3(0, 0, 5) // behind the camera, which faces -Z

	eng := New(annotationConfig(0.1))
	boxes, err := eng.Annotate(recipeFor(1), engine.PlacementResult{
		Poses:  []engine.ObjectPose{pose},
		Camera: cam,
		Width:  100,
		Height: 100,
	})
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(boxes) != 0 {
		t.Fatalf("object fully behind camera must emit no box, got %+v", boxes)
	}
}

func TestAnnotate_InFrontOfCameraEmitted(t *testing.T) {
	cam := engine.CameraSpec{
		Position:    mat32.V3(0, 0, 0),
		Target:      mat32.V3(0, 0, -1),
		Up:          mat32.V3(0, 1, 0),
		FocalLength: 50,
	}.Matrices(640, 480)

	pose := identityPose(mat32.Box3{
		Min: mat32.V3(-0.5, -0.5, -0.5),
		Max: mat32.V3(0.5, 0.5, 0.5),
	})
	pose.Position = mat32.V3(0, 0, -5)

	eng := New(annotationConfig(0.1))
	boxes, err := eng.Annotate(recipeFor(1), engine.PlacementResult{
		Poses:  []engine.ObjectPose{pose},
		Camera: cam,
		Width:  640,
		Height: 480,
	})
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}

	box := boxes[0]
	if box.Width <= 0 || box.Height <= 0 {
		t.Fatalf("box extent must be positive, got %+v", box)
	}
	for _, v := range []float32{box.XCenter, box.YCenter, box.Width, box.Height} {
		if v < 0 || v > 1 {
			t.Fatalf("box fields must be normalized to [0,1], got %+v", box)
		}
	}
	// Centered object should project near the image center.
	if math.Abs(float64(box.XCenter-0.5)) > 0.05 || math.Abs(float64(box.YCenter-0.5)) > 0.05 {
		t.Fatalf("expected centered box, got %+v", box)
	}
	if box.Visibility < 0.99 {
		t.Fatalf("unclipped object should be fully visible, got %v", box.Visibility)
	}
}

func TestAnnotate_ZeroAreaDropped(t *testing.T) {
	// Degenerate bounds collapse to a vertical line: zero projected width.
	bounds := mat32.Box3{
		Min: mat32.V3(0.2, -0.5, 0),
		Max: mat32.V3(0.2, 0.5, 0),
	}

	eng := New(annotationConfig(0))
	boxes, err := eng.Annotate(recipeFor(1), identityResult(100, 100, identityPose(bounds)))
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(boxes) != 0 {
		t.Fatalf("zero-area projection must be dropped, got %+v", boxes)
	}
}

func TestAnnotate_MinBoxArea(t *testing.T) {
	// Projected box is 10×10 px on a 100×100 frame.
	bounds := mat32.Box3{
		Min: mat32.V3(-0.1, -0.1, 0),
		Max: mat32.V3(0.1, 0.1, 0),
	}

	eng := New(config.Annotation{Format: "yolo", MinVisibility: 0, MinBoxArea: 200})
	boxes, err := eng.Annotate(recipeFor(1), identityResult(100, 100, identityPose(bounds)))
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(boxes) != 0 {
		t.Fatalf("box under the pixel-area floor must be dropped, got %+v", boxes)
	}
}

func TestAnnotate_PoseCountMismatch(t *testing.T) {
	eng := New(annotationConfig(0.1))
	if _, err := eng.Annotate(recipeFor(2), identityResult(100, 100)); err == nil {
		t.Fatal("expected error for pose/object count mismatch")
	}
}

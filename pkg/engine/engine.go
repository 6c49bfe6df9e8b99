// Package engine defines the contract with the external physics/render
// engine. The engine keeps a single live scene graph, so a Session is a
// serialized critical section: one Execute call in flight per session, with
// scale-out achieved by opening one session per worker. Implementations live
// outside this module; tests use the deterministic stub in pkg/testsupport.
package engine

import (
	"context"
	"image"

	"goki.dev/mat32/v2"
)

// ObjectSpec places one asset in the scene description.
type ObjectSpec struct {
	Asset    string
	Position mat32.Vec3
	Rotation mat32.Vec3
	Scale    float32
}

// CameraSpec positions the camera for the render.
type CameraSpec struct {
	Position    mat32.Vec3
	Target      mat32.Vec3
	Up          mat32.Vec3
	FocalLength float32
}

// LightSpec adds one light to the scene.
type LightSpec struct {
	Kind      string
	Position  mat32.Vec3
	Intensity float32
	Color     [3]float32
}

// PhysicsSpec configures the rigid-body settle before the render.
type PhysicsSpec struct {
	Gravity     [3]float32
	Steps       int
	Substeps    int
	Friction    float32
	Restitution float32
}

// RenderSpec configures the render pass.
type RenderSpec struct {
	Engine  string
	Samples int
	Width   int
	Height  int
	Device  string
}

// SceneRequest is the full scene description submitted to the engine:
// clear scene, instantiate objects, apply transforms, run physics, render.
type SceneRequest struct {
	Objects    []ObjectSpec
	Camera     CameraSpec
	Lights     []LightSpec
	Background [3]float32
	Physics    PhysicsSpec
	Render     RenderSpec
}

// ObjectPose is an object's state after the physics settle: its world
// transform, residual velocity, and the asset's local-space bounds. Bounds
// are reported by the engine because only it parses asset geometry.
type ObjectPose struct {
	Position mat32.Vec3
	Rotation mat32.Quat
	Scale    mat32.Vec3
	Velocity mat32.Vec3
	Bounds   mat32.Box3
}

// CameraMatrices are the view and projection transforms used for the render,
// exactly as the rasterizer saw them. The annotation engine projects object
// bounds through these.
type CameraMatrices struct {
	View       mat32.Mat4
	Projection mat32.Mat4
}

// PlacementResult is the engine's response: settled poses parallel to the
// request's object list, the rendered image, and the camera matrices.
type PlacementResult struct {
	Poses  []ObjectPose
	Image  image.Image
	Camera CameraMatrices
	Width  int
	Height int
}

// Session is one live engine instance. Execute runs the full request
// sequence against the engine's scene graph; Reset returns the scene to
// empty and is invoked on every exit path so state never leaks between
// recipes. Sessions are not safe for concurrent Execute calls.
type Session interface {
	Execute(ctx context.Context, req SceneRequest) (PlacementResult, error)
	Reset(ctx context.Context) error
	Close() error
}

// SessionFactory opens engine sessions, one per pipeline worker.
type SessionFactory func(ctx context.Context) (Session, error)

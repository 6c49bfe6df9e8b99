// Package scene defines the fully resolved, replayable description of one
// generated image: the SceneRecipe. A recipe is a pure function of
// (configuration, seed) and is the unit of reproducibility — replaying the
// same recipe against the engine reproduces the same scene.
package scene

import (
	"goki.dev/mat32/v2"
)

// Transform is an initial drop transform for one object instance: position,
// Euler rotation in radians, and a uniform scale factor.
type Transform struct {
	Position mat32.Vec3
	Rotation mat32.Vec3
	Scale    float32
}

// ObjectInstance is one chosen object: its class, the concrete asset within
// the class, and the transform it is dropped from before physics settles.
type ObjectInstance struct {
	ClassID int
	Class   string
	Asset   string
	Drop    Transform
}

// Camera is the sampled camera rig. Position is derived from the spherical
// draw (distance, azimuth, elevation) around Target; the engine builds the
// view matrix by looking at Target with Up.
type Camera struct {
	Position    mat32.Vec3
	Target      mat32.Vec3
	Up          mat32.Vec3
	FocalLength float32
}

// LightKind enumerates the engine light types the sampler can pick.
type LightKind string

const (
	LightPoint LightKind = "point"
	LightSun   LightKind = "sun"
	LightArea  LightKind = "area"
)

// Light is one sampled light: placement, intensity, and the RGB color
// derived from its sampled color temperature.
type Light struct {
	Kind      LightKind
	Position  mat32.Vec3
	Intensity float32
	ColorTemp float32
	Color     [3]float32
}

// Recipe fully specifies one image. Immutable once produced: identical
// (config, seed) inputs yield bit-identical recipes.
type Recipe struct {
	Seed       uint64
	Objects    []ObjectInstance
	Camera     Camera
	Lights     []Light
	Background [3]float32
}

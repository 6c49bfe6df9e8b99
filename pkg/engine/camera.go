package engine

import (
	"github.com/chewxy/math32"
	"goki.dev/mat32/v2"
)

// sensorWidthMM mirrors a full-frame 36mm sensor, the engine's default.
const sensorWidthMM = 36.0

// Matrices derives the view and projection transforms for this camera at
// the given output resolution. Engine implementations are expected to report
// the matrices they actually rendered with; this helper keeps the stub
// session and real adapters consistent with each other.
func (c CameraSpec) Matrices(width, height int) CameraMatrices {
	up := c.Up
	if up == (mat32.Vec3{}) {
		up = mat32.V3(0, 0, 1)
	}
	focal := c.FocalLength
	if focal <= 0 {
		focal = 50
	}

	var look mat32.Quat
	look.SetFromRotationMatrix(mat32.NewLookAt(c.Position, c.Target, up))
	var pose mat32.Mat4
	pose.SetTransform(c.Position, look, mat32.V3(1, 1, 1))
	view, _ := pose.Inverse()

	aspect := float32(width) / float32(height)
	// Vertical field of view from the 35mm-style focal length.
	fov := mat32.RadToDeg(2 * math32.Atan(sensorWidthMM/aspect/(2*focal)))
	var proj mat32.Mat4
	proj.SetPerspective(fov, aspect, 0.01, 1000)

	return CameraMatrices{View: *view, Projection: proj}
}

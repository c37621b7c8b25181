package engine

import "github.com/go-gl/mathgl/mgl32"

// Camera is a perspective camera used by renderers to project world space
// positions onto the device.
type Camera struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3
	FovY   float32 // degrees
	Near   float32
	Far    float32
}

// NewCamera returns a camera looking from eye at target with a 60 degree field of view.
func NewCamera(eye, target mgl32.Vec3) *Camera {
	return &Camera{
		Eye:    eye,
		Target: target,
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   60,
		Near:   0.1,
		Far:    1000,
	}
}

func (c *Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	view := mgl32.LookAtV(c.Eye, c.Target, c.Up)
	proj := mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
	return proj.Mul4(view)
}

// Project maps a world position to pixel coordinates on a width x height
// surface. ok is false when the point is behind the camera or outside the
// clip volume.
func (c *Camera) Project(p mgl32.Vec3, width, height int) (x, y, depth float32, ok bool) {
	if width <= 0 || height <= 0 {
		return 0, 0, 0, false
	}

	clip := c.ViewProjection(float32(width) / float32(height)).Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return 0, 0, 0, false
	}

	ndc := clip.Vec3().Mul(1 / w)
	if ndc.X() < -1 || ndc.X() > 1 || ndc.Y() < -1 || ndc.Y() > 1 || ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X() + 1) * 0.5 * float32(width)
	y = (1 - ndc.Y()) * 0.5 * float32(height)
	return x, y, w, true
}

package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/blockworks/physics"
)

// Transform is the spatial state of an actor. The world matrix is cached and
// rebuilt on the first read after any setter.
type Transform struct {
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3

	matrix mgl32.Mat4
	dirty  bool

	body physics.Body
}

func newTransform(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) Transform {
	return Transform{
		position: position,
		rotation: rotation.Normalize(),
		scale:    scale,
		dirty:    true,
	}
}

func (t *Transform) Position() mgl32.Vec3 { return t.position }
func (t *Transform) Rotation() mgl32.Quat { return t.rotation }
func (t *Transform) Scale() mgl32.Vec3    { return t.scale }

// SetPosition moves the transform and teleports the backing body with it.
// Static and dynamic bodies alike; a dynamic body keeps its velocity and
// is simulated from the new pose on the next step.
func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.dirty = true
	if t.body != nil {
		t.body.SetPosition(p)
	}
}

// SetRotation replaces the rotation and keeps the backing body in step.
func (t *Transform) SetRotation(q mgl32.Quat) {
	t.rotation = q.Normalize()
	t.dirty = true
	if t.body != nil {
		t.body.SetRotation(t.rotation)
	}
}

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.dirty = true
}

// Translate offsets the position by d.
func (t *Transform) Translate(d mgl32.Vec3) {
	t.SetPosition(t.position.Add(d))
}

// Rotate applies q after the current rotation.
func (t *Transform) Rotate(q mgl32.Quat) {
	t.SetRotation(q.Mul(t.rotation))
}

// Matrix returns Translation(position) * Rotation(rotation) * Scale(scale).
func (t *Transform) Matrix() mgl32.Mat4 {
	if t.dirty {
		translation := mgl32.Translate3D(t.position.X(), t.position.Y(), t.position.Z())
		scale := mgl32.Scale3D(t.scale.X(), t.scale.Y(), t.scale.Z())
		t.matrix = translation.Mul4(t.rotation.Mat4()).Mul4(scale)
		t.dirty = false
	}
	return t.matrix
}

// syncFromBody copies the simulated pose back without pushing it to the body again.
func (t *Transform) syncFromBody() {
	if t.body == nil {
		return
	}
	p, q := t.body.Position(), t.body.Rotation()
	if p != t.position || q != t.rotation {
		t.position = p
		t.rotation = q
		t.dirty = true
	}
}

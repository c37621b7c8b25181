// Package physics defines the boundary between the engine core and a physics
// simulation, and ships Space, a small built-in scene for rigid bodies.
package physics

import "github.com/go-gl/mathgl/mgl32"

// BodyDesc describes a rigid body to create.
type BodyDesc struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Dynamic  bool
	Mass     float32
}

// Body is a rigid body owned by a Scene.
type Body interface {
	ID() uint64
	Dynamic() bool
	Position() mgl32.Vec3
	SetPosition(p mgl32.Vec3)
	Rotation() mgl32.Quat
	SetRotation(q mgl32.Quat)
	Velocity() mgl32.Vec3
	ApplyImpulse(impulse mgl32.Vec3)
}

// Scene owns the bodies taking part in a simulation. Scenes are driven from
// the game's main goroutine only.
type Scene interface {
	CreateBody(desc BodyDesc) Body
	RemoveBody(b Body) bool
	Step(dt float64)
	BodyCount() int
	Close() error
}

package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/blockworks/engine"
)

// Spinner rotates its actor about Axis at Speed degrees per second.
type Spinner struct {
	engine.ComponentBase
	Axis  mgl32.Vec3
	Speed float32
}

func NewSpinner(axis mgl32.Vec3, speed float32) *Spinner {
	if axis.Len() == 0 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return &Spinner{
		ComponentBase: engine.NewComponentBase(engine.EventUpdate),
		Axis:          axis.Normalize(),
		Speed:         speed,
	}
}

func (s *Spinner) Update(f *engine.Frame) {
	a, ok := s.Actor()
	if !ok {
		return
	}
	angle := mgl32.DegToRad(s.Speed * float32(f.DeltaTime))
	a.Transform().Rotate(mgl32.QuatRotate(angle, s.Axis))
}

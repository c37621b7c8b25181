package components

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/blockworks/engine"
)

// Renderer draws its actor as a screen-aligned square whose side is Size
// world units at the actor's depth.
type Renderer struct {
	engine.ComponentBase
	Size  float32
	Color color.Color
}

func NewRenderer(size float32, clr color.Color) *Renderer {
	if size <= 0 {
		size = 1
	}
	if clr == nil {
		clr = color.White
	}
	return &Renderer{
		ComponentBase: engine.NewComponentBase(engine.EventRender),
		Size:          size,
		Color:         clr,
	}
}

func (r *Renderer) Draw(f *engine.Frame) {
	a, ok := r.Actor()
	if !ok {
		return
	}
	w, h := f.Device.Size()
	camera := f.Game.Camera()
	t := a.Transform()
	center := t.Position()

	x, y, _, ok := camera.Project(center, w, h)
	if !ok {
		return
	}
	// the projected height of a vertical edge gives the on-screen side length
	_, y2, _, ok := camera.Project(center.Add(mgl32.Vec3{0, r.Size * t.Scale().Y(), 0}), w, h)
	side := float32(1)
	if ok {
		side = max(float32(math.Abs(float64(y-y2))), 1)
	}

	f.Device.FillRect(x-side/2, y-side/2, side, side, r.Color)
}

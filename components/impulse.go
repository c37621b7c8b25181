package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/blockworks/engine"
)

// Impulse kicks its actor's dynamic body every Interval seconds. Static
// bodies ignore the kick.
type Impulse struct {
	engine.ComponentBase
	Kick     mgl32.Vec3
	Interval float64

	elapsed float64
	kicks   int
}

func NewImpulse(kick mgl32.Vec3, interval float64) *Impulse {
	if interval <= 0 {
		interval = 1
	}
	return &Impulse{
		ComponentBase: engine.NewComponentBase(engine.EventUpdate),
		Kick:          kick,
		Interval:      interval,
	}
}

// Kicks returns how many impulses were applied.
func (i *Impulse) Kicks() int { return i.kicks }

func (i *Impulse) Update(f *engine.Frame) {
	i.elapsed += f.DeltaTime
	if i.elapsed < i.Interval {
		return
	}
	i.elapsed -= i.Interval

	a, ok := i.Actor()
	if !ok || a.Body() == nil || !a.Body().Dynamic() {
		return
	}
	a.Body().ApplyImpulse(i.Kick)
	i.kicks++
}

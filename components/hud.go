package components

import (
	"fmt"

	"github.com/plus3/blockworks/engine"
)

const hudLineHeight = 16

// HUD prints frame rate, actor counts and background queue figures in the
// top left corner.
type HUD struct {
	engine.ComponentBase
	X, Y int

	fps float64
}

func NewHUD() *HUD {
	return &HUD{
		ComponentBase: engine.NewComponentBase(engine.EventRender2D),
		X:             8,
		Y:             8,
	}
}

// Lines returns the text the HUD would draw for the frame.
func (h *HUD) Lines(f *engine.Frame) []string {
	if f.DeltaTime > 0 {
		fps := 1 / f.DeltaTime
		if h.fps == 0 {
			h.fps = fps
		} else {
			h.fps = h.fps*0.9 + fps*0.1
		}
	}

	s := f.Game.Stats()
	lines := []string{
		fmt.Sprintf("tick %d  fps %.0f", s.Ticks, h.fps),
		fmt.Sprintf("actors %d  components %d  bodies %d", s.Actors, s.Components, s.Bodies),
	}
	for _, p := range s.Phases {
		lines = append(lines, fmt.Sprintf("%-8s actors %-4d last %v", p.Name, p.Actors, p.LastDuration))
	}
	if s.Queue != nil {
		lines = append(lines, fmt.Sprintf("queue pending %d  done %d  dropped %d  workers %d",
			s.Queue.Pending, s.Queue.Executed, s.Queue.Dropped, s.Queue.Workers))
	}
	return lines
}

func (h *HUD) Draw2D(f *engine.Frame) {
	for i, line := range h.Lines(f) {
		f.Device.DebugText(line, h.X, h.Y+i*hudLineHeight)
	}
}

// Package debugui provides Dear ImGui inspection windows for a running game.
// Windows are engine components: during the update phase they queue their
// render functions on the frame's commands, so a driver that wraps Step in
// an ImGui frame gets them drawn once per simulation step.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockworks/engine"
)

// ImguiItem is a component that holds a Dear ImGui render function.
type ImguiItem struct {
	engine.ComponentBase
	Render func()
}

func NewImguiItem(render func()) *ImguiItem {
	return &ImguiItem{
		ComponentBase: engine.NewComponentBase(engine.EventUpdate),
		Render:        render,
	}
}

func (i *ImguiItem) Update(f *engine.Frame) {
	if i.Render != nil {
		f.Commands.Defer(i.Render)
	}
}

// InputState tracks whether Dear ImGui is consuming mouse or keyboard input.
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// CurrentInput reads the capture state of the current ImGui context.
func CurrentInput() InputState {
	io := imgui.CurrentIO()
	return InputState{
		WantCaptureMouse:    io.WantCaptureMouse(),
		WantCaptureKeyboard: io.WantCaptureKeyboard(),
	}
}

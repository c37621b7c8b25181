package engine_test

import (
	"fmt"
	"image/color"

	"github.com/plus3/blockworks/engine"
)

// probe records every hook invocation into a shared log.
type probe struct {
	engine.ComponentBase
	name string
	log  *[]string

	starts, updates, draws, draws2D int
}

func newProbe(name string, mask engine.EventType, log *[]string) *probe {
	return &probe{ComponentBase: engine.NewComponentBase(mask), name: name, log: log}
}

func (p *probe) record(hook string) {
	if p.log != nil {
		*p.log = append(*p.log, fmt.Sprintf("%s.%s", p.name, hook))
	}
}

func (p *probe) Start(*engine.Frame)  { p.starts++; p.record("Start") }
func (p *probe) Update(*engine.Frame) { p.updates++; p.record("Update") }
func (p *probe) Draw(*engine.Frame)   { p.draws++; p.record("Draw") }
func (p *probe) Draw2D(*engine.Frame) { p.draws2D++; p.record("Draw2D") }

type rect struct {
	X, Y, W, H float32
}

type recordingDevice struct {
	rects []rect
	texts []string
}

func (d *recordingDevice) Size() (int, int) { return 640, 480 }

func (d *recordingDevice) FillRect(x, y, w, h float32, _ color.Color) {
	d.rects = append(d.rects, rect{x, y, w, h})
}

func (d *recordingDevice) DebugText(text string, _, _ int) {
	d.texts = append(d.texts, text)
}

func newTestGame() *engine.Game {
	return engine.New(engine.Options{})
}

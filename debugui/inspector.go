package debugui

import (
	"github.com/plus3/blockworks/engine"
)

// Inspector bundles the debug windows into one component.
type Inspector struct {
	engine.ComponentBase

	Browser     *ActorBrowser
	Components  *ComponentInspector
	Phases      *PhaseViewer
	Performance *PerformanceStats
	Queries     *PhaseQuery

	Input InputState

	game  *engine.Game
	delta float32
}

func NewInspector() *Inspector {
	return &Inspector{
		ComponentBase: engine.NewComponentBase(engine.EventUpdate),
		Browser:       NewActorBrowser(100),
		Components:    NewComponentInspector(),
		Phases:        NewPhaseViewer(),
		Performance:   NewPerformanceStats(120),
		Queries:       NewPhaseQuery(),
	}
}

func (in *Inspector) Update(f *engine.Frame) {
	in.game = f.Game
	in.delta = float32(f.DeltaTime)
	f.Commands.Defer(in.render)
}

func (in *Inspector) render() {
	g := in.game
	if g == nil || g.Closed() {
		return
	}
	in.Input = CurrentInput()

	in.Browser.Render(g)
	in.Components.Render(g, in.Browser.Selected())
	in.Phases.Render(g)
	in.Performance.Render(g, in.delta)
	in.Queries.Render(g)
}

// Spawn creates an actor carrying an Inspector.
func Spawn(g *engine.Game) (*Inspector, error) {
	a, err := g.CreateActor(engine.ActorOptions{Name: "debugui"})
	if err != nil {
		return nil, err
	}
	in := NewInspector()
	if _, err := a.AddComponent(in); err != nil {
		g.DestroyActor(a.Entity())
		return nil, err
	}
	return in, nil
}

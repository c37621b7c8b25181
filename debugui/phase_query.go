package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockworks/engine"
)

// PhaseQuery lists the actors registered for every selected phase.
type PhaseQuery struct {
	selected engine.EventType
}

func NewPhaseQuery() *PhaseQuery {
	return &PhaseQuery{}
}

func (pq *PhaseQuery) Selected() engine.EventType { return pq.selected }

func (pq *PhaseQuery) Select(mask engine.EventType) { pq.selected = mask }

func (pq *PhaseQuery) Render(g *engine.Game) {
	if !imgui.BeginV("Phase Query", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text("Select Phases:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		pq.selected = engine.EventNone
	}

	for _, p := range engine.Phases {
		on := pq.selected.Has(p)
		if imgui.Checkbox(p.String(), &on) {
			pq.selected = TogglePhase(pq.selected, p, on)
		}
	}

	imgui.Separator()

	if pq.selected == engine.EventNone {
		imgui.Text("No phases selected")
		imgui.End()
		return
	}

	matching := MatchingActors(g, pq.selected)
	imgui.Text(fmt.Sprintf("Matching Actors: %d", len(matching)))

	if imgui.TreeNodeStr("Actor Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("PhaseQueryTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Actor")
			imgui.TableSetupColumn("Name")
			imgui.TableSetupColumn("Phases")
			imgui.TableHeadersRow()

			for _, a := range matching {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(a.Entity().String())

				imgui.TableSetColumnIndex(1)
				imgui.Text(a.Name())

				imgui.TableSetColumnIndex(2)
				imgui.Text(a.EventTypes().String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

// MatchingActors returns the live actors whose aggregate mask contains
// every phase in mask, in arena order.
func MatchingActors(g *engine.Game, mask engine.EventType) []*engine.Actor {
	var matching []*engine.Actor
	for _, a := range g.Actors() {
		if a.EventTypes()&mask == mask {
			matching = append(matching, a)
		}
	}
	return matching
}

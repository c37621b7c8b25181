package debugui

import (
	"fmt"
	"slices"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockworks/engine"
)

type PhaseViewerCache struct {
	phases        []engine.PhaseStats
	sortColumn    int
	sortAscending bool
}

// PhaseViewer shows per-phase timing in a sortable table, with a bar
// proportional to each phase's share of the frame.
type PhaseViewer struct {
	cache *PhaseViewerCache
}

func NewPhaseViewer() *PhaseViewer {
	return &PhaseViewer{
		cache: &PhaseViewerCache{
			sortColumn:    0,
			sortAscending: true,
		},
	}
}

func (pv *PhaseViewer) Render(g *engine.Game) {
	if !imgui.BeginV("Phase Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	pv.Rebuild(g.Stats())

	var total float32
	for _, p := range pv.cache.phases {
		total += float32(p.LastDuration)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable
	if imgui.BeginTableV("PhaseTable", 6, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Phase")
		imgui.TableSetupColumn("Actors")
		imgui.TableSetupColumn("Calls")
		imgui.TableSetupColumn("Last")
		imgui.TableSetupColumn("Avg")
		imgui.TableSetupColumn("Max")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			pv.SortBy(int(spec.ColumnIndex()), spec.SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, p := range pv.cache.phases {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			imgui.Text(p.Name)
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", p.Actors))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", p.Invocations))
			imgui.TableNextColumn()
			imgui.Text(p.LastDuration.String())
			imgui.TableNextColumn()
			imgui.Text(p.AvgDuration.String())
			imgui.TableNextColumn()
			imgui.Text(p.MaxDuration.String())

			if total > 0 {
				barWidth := float32(p.LastDuration) / total * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
}

// Rebuild refreshes the rows from stats. The physics step is listed after
// the dispatch phases.
func (pv *PhaseViewer) Rebuild(stats engine.Stats) {
	pv.cache.phases = pv.cache.phases[:0]
	pv.cache.phases = append(pv.cache.phases, stats.Phases...)
	pv.cache.phases = append(pv.cache.phases, stats.Physics)
	pv.sortPhases()
}

func (pv *PhaseViewer) SortBy(column int, ascending bool) {
	pv.cache.sortColumn = column
	pv.cache.sortAscending = ascending
	pv.sortPhases()
}

func (pv *PhaseViewer) Rows() []engine.PhaseStats {
	return pv.cache.phases
}

func (pv *PhaseViewer) sortPhases() {
	// Rows arrive in frame order, which is the column 0 order.
	if pv.cache.sortColumn == 0 {
		if !pv.cache.sortAscending {
			slices.Reverse(pv.cache.phases)
		}
		return
	}
	sort.SliceStable(pv.cache.phases, func(i, j int) bool {
		a, b := pv.cache.phases[i], pv.cache.phases[j]
		if !pv.cache.sortAscending {
			a, b = b, a
		}
		var less bool

		switch pv.cache.sortColumn {
		case 1:
			less = a.Actors < b.Actors
		case 2:
			less = a.Invocations < b.Invocations
		case 3:
			less = a.LastDuration < b.LastDuration
		case 4:
			less = a.AvgDuration < b.AvgDuration
		default:
			less = a.MaxDuration < b.MaxDuration
		}

		return less
	})
}

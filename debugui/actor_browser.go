package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockworks/engine"
)

type ActorInfo struct {
	Entity         engine.Entity
	Name           string
	Mask           engine.EventType
	ComponentTypes []string
	ComponentCount int
}

type ActorBrowserCache struct {
	actors        []ActorInfo
	lastTick      uint64
	lastCount     int
	sortColumn    int
	sortAscending bool
}

// ActorBrowser lists actors in a sortable, filterable, paged table.
type ActorBrowser struct {
	cache            *ActorBrowserCache
	selected         engine.Entity
	filterText       string
	maxActorsPerPage int
	currentPage      int
}

func NewActorBrowser(maxActorsPerPage int) *ActorBrowser {
	return &ActorBrowser{
		cache: &ActorBrowserCache{
			sortColumn:    0,
			sortAscending: true,
		},
		maxActorsPerPage: maxActorsPerPage,
	}
}

func (ab *ActorBrowser) Render(g *engine.Game) {
	if !imgui.BeginV("Actor Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ab.rebuildCacheIfNeeded(g)

	imgui.InputTextWithHint("##search", "Search...", &ab.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		ab.filterText = ""
	}

	filtered := ab.Filtered()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("ActorTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Actor")
		imgui.TableSetupColumn("Name")
		imgui.TableSetupColumn("Phases")
		imgui.TableSetupColumn("Components")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			ab.SortBy(int(spec.ColumnIndex()), spec.SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
			filtered = ab.Filtered()
		}

		start, end := ab.pageBounds(len(filtered))
		for _, actor := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := ab.selected.Equals(actor.Entity)
			if imgui.SelectableBoolV(actor.Entity.String(), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				ab.selected = actor.Entity
			}

			imgui.TableNextColumn()
			imgui.Text(actor.Name)

			imgui.TableNextColumn()
			imgui.Text(actor.Mask.String())

			imgui.TableNextColumn()
			imgui.Text(strings.Join(actor.ComponentTypes, ", "))
		}

		imgui.EndTable()
	}

	if len(filtered) > ab.maxActorsPerPage {
		totalPages := ab.pages(len(filtered))
		imgui.Text(fmt.Sprintf("Page %d / %d (%d actors)", ab.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && ab.currentPage > 0 {
			ab.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && ab.currentPage < totalPages-1 {
			ab.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d actors", len(filtered)))
	}

	imgui.End()
}

// Selected returns the selected actor, or the zero Entity.
func (ab *ActorBrowser) Selected() engine.Entity { return ab.selected }

func (ab *ActorBrowser) Select(e engine.Entity) { ab.selected = e }

func (ab *ActorBrowser) SetFilter(text string) {
	ab.filterText = text
	ab.currentPage = 0
}

// rebuildCacheIfNeeded refreshes the rows once per tick, or immediately when
// the actor count changed.
func (ab *ActorBrowser) rebuildCacheIfNeeded(g *engine.Game) {
	if ab.cache.actors != nil && ab.cache.lastTick == g.TickCount() && ab.cache.lastCount == g.ActorCount() {
		return
	}
	ab.Rebuild(g)
}

// Rebuild snapshots the game's actors.
func (ab *ActorBrowser) Rebuild(g *engine.Game) {
	ab.cache.actors = make([]ActorInfo, 0, g.ActorCount())
	ab.cache.lastTick = g.TickCount()
	ab.cache.lastCount = g.ActorCount()

	for e, a := range g.Actors() {
		info := ActorInfo{
			Entity:         e,
			Name:           a.Name(),
			Mask:           a.EventTypes(),
			ComponentCount: a.ComponentCount(),
		}
		for _, c := range a.Components() {
			info.ComponentTypes = append(info.ComponentTypes, typeName(c))
		}
		ab.cache.actors = append(ab.cache.actors, info)
	}

	if !ab.selected.IsZero() {
		if _, ok := g.Actor(ab.selected); !ok {
			ab.selected = engine.Entity{}
		}
	}
	ab.sortActors()
}

func (ab *ActorBrowser) SortBy(column int, ascending bool) {
	ab.cache.sortColumn = column
	ab.cache.sortAscending = ascending
	ab.sortActors()
}

func (ab *ActorBrowser) sortActors() {
	sort.SliceStable(ab.cache.actors, func(i, j int) bool {
		a, b := ab.cache.actors[i], ab.cache.actors[j]
		if !ab.cache.sortAscending {
			a, b = b, a
		}
		var less bool

		switch ab.cache.sortColumn {
		case 0:
			less = a.Entity.Index < b.Entity.Index
		case 1:
			less = a.Name < b.Name
		case 2:
			less = a.Mask < b.Mask
		case 3:
			less = a.ComponentCount < b.ComponentCount
		default:
			less = a.Entity.Index < b.Entity.Index
		}

		return less
	})
}

// Filtered returns the rows matching the filter text against the handle,
// name, phases and component type names.
func (ab *ActorBrowser) Filtered() []ActorInfo {
	if ab.filterText == "" {
		return ab.cache.actors
	}

	filtered := make([]ActorInfo, 0, len(ab.cache.actors))
	filterLower := strings.ToLower(ab.filterText)

	for _, actor := range ab.cache.actors {
		componentsStr := strings.ToLower(strings.Join(actor.ComponentTypes, " "))
		if !strings.Contains(actor.Entity.String(), filterLower) &&
			!strings.Contains(strings.ToLower(actor.Name), filterLower) &&
			!strings.Contains(actor.Mask.String(), filterLower) &&
			!strings.Contains(componentsStr, filterLower) {
			continue
		}
		filtered = append(filtered, actor)
	}

	return filtered
}

func (ab *ActorBrowser) pages(n int) int {
	return (n + ab.maxActorsPerPage - 1) / ab.maxActorsPerPage
}

func (ab *ActorBrowser) pageBounds(n int) (int, int) {
	if last := max(ab.pages(n)-1, 0); ab.currentPage > last {
		ab.currentPage = last
	}
	start := ab.currentPage * ab.maxActorsPerPage
	end := min(start+ab.maxActorsPerPage, n)
	return start, end
}

func typeName(c engine.Component) string {
	return layouts.Layout(c).Name
}

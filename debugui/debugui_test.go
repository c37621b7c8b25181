package debugui_test

import (
	"reflect"
	"testing"

	"github.com/plus3/blockworks/debugui"
	"github.com/plus3/blockworks/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type marker struct {
	engine.ComponentBase
	Label  string
	Weight float32
	hidden int
}

func newMarker(label string, mask engine.EventType) *marker {
	return &marker{ComponentBase: engine.NewComponentBase(mask), Label: label}
}

func spawn(t *testing.T, g *engine.Game, name string, components ...engine.Component) *engine.Actor {
	t.Helper()
	a, err := g.CreateActor(engine.ActorOptions{Name: name})
	require.NoError(t, err)
	for _, c := range components {
		_, err := a.AddComponent(c)
		require.NoError(t, err)
	}
	return a
}

func TestImguiItem(t *testing.T) {
	g := engine.New(engine.Options{})
	defer g.Close()

	calls := 0
	spawn(t, g, "item", debugui.NewImguiItem(func() { calls++ }))

	require.NoError(t, g.Step(1.0/60))
	assert.Equal(t, 1, calls, "render func runs when commands flush")
	require.NoError(t, g.Step(1.0/60))
	assert.Equal(t, 2, calls)

	t.Run("NilRender", func(t *testing.T) {
		spawn(t, g, "empty", debugui.NewImguiItem(nil))
		require.NoError(t, g.Step(1.0/60))
		assert.Equal(t, 3, calls)
	})
}

func TestActorBrowser(t *testing.T) {
	g := engine.New(engine.Options{})
	defer g.Close()

	rock := spawn(t, g, "rock", newMarker("a", engine.EventRender))
	tree := spawn(t, g, "tree", newMarker("b", engine.EventUpdate), newMarker("c", engine.EventRender2D))
	spawn(t, g, "cloud")

	ab := debugui.NewActorBrowser(2)
	ab.Rebuild(g)
	require.Len(t, ab.Filtered(), 3)

	t.Run("Filter", func(t *testing.T) {
		ab.SetFilter("TREE")
		rows := ab.Filtered()
		require.Len(t, rows, 1)
		assert.True(t, rows[0].Entity.Equals(tree.Entity()))
		assert.Equal(t, 2, rows[0].ComponentCount)
		assert.Equal(t, []string{"debugui_test.marker", "debugui_test.marker"}, rows[0].ComponentTypes)

		ab.SetFilter("render2d")
		require.Len(t, ab.Filtered(), 1)

		ab.SetFilter("marker")
		assert.Len(t, ab.Filtered(), 2)

		ab.SetFilter("")
		assert.Len(t, ab.Filtered(), 3)
	})

	t.Run("Sort", func(t *testing.T) {
		ab.SortBy(1, true)
		names := func() []string {
			var out []string
			for _, r := range ab.Filtered() {
				out = append(out, r.Name)
			}
			return out
		}
		assert.Equal(t, []string{"cloud", "rock", "tree"}, names())

		ab.SortBy(3, false)
		assert.Equal(t, "tree", names()[0])

		ab.SortBy(0, true)
		assert.Equal(t, []string{"rock", "tree", "cloud"}, names())
	})

	t.Run("StaleSelection", func(t *testing.T) {
		ab.Select(rock.Entity())
		ab.Rebuild(g)
		assert.True(t, ab.Selected().Equals(rock.Entity()))

		require.True(t, g.DestroyActor(rock.Entity()))
		ab.Rebuild(g)
		assert.True(t, ab.Selected().IsZero())
		assert.Len(t, ab.Filtered(), 2)
	})
}

func TestPhaseViewer(t *testing.T) {
	g := engine.New(engine.Options{})
	defer g.Close()

	spawn(t, g, "a", newMarker("a", engine.EventUpdate|engine.EventRender))
	spawn(t, g, "b", newMarker("b", engine.EventUpdate))
	require.NoError(t, g.Tick(1.0/60))

	pv := debugui.NewPhaseViewer()
	pv.Rebuild(g.Stats())

	order := func() []string {
		var out []string
		for _, p := range pv.Rows() {
			out = append(out, p.Name)
		}
		return out
	}
	assert.Equal(t, []string{"update", "render", "render2d", "physics"}, order())

	pv.SortBy(0, false)
	assert.Equal(t, []string{"physics", "render2d", "render", "update"}, order())

	pv.SortBy(1, false)
	rows := pv.Rows()
	assert.Equal(t, "update", rows[0].Name)
	assert.Equal(t, 2, rows[0].Actors)

	pv.SortBy(0, true)
	pv.Rebuild(g.Stats())
	assert.Equal(t, []string{"update", "render", "render2d", "physics"}, order())
}

func TestPhaseQuery(t *testing.T) {
	g := engine.New(engine.Options{})
	defer g.Close()

	both := spawn(t, g, "both", newMarker("a", engine.EventUpdate|engine.EventRender))
	update := spawn(t, g, "update", newMarker("b", engine.EventUpdate))
	spawn(t, g, "idle")

	names := func(actors []*engine.Actor) []string {
		var out []string
		for _, a := range actors {
			out = append(out, a.Name())
		}
		return out
	}

	assert.Equal(t, []string{"both", "update"}, names(debugui.MatchingActors(g, engine.EventUpdate)))
	assert.Equal(t, []string{"both"}, names(debugui.MatchingActors(g, engine.EventUpdate|engine.EventRender)))
	assert.Empty(t, debugui.MatchingActors(g, engine.EventRender2D))

	c, ok := engine.GetComponent[*marker](update)
	require.True(t, ok)
	require.NoError(t, update.SetComponentEnabled(c, false))
	assert.Equal(t, []string{"both"}, names(debugui.MatchingActors(g, engine.EventUpdate)))

	require.True(t, g.DestroyActor(both.Entity()))
	assert.Empty(t, debugui.MatchingActors(g, engine.EventUpdate))

	pq := debugui.NewPhaseQuery()
	assert.Equal(t, engine.EventNone, pq.Selected())
	pq.Select(engine.EventRender)
	assert.Equal(t, engine.EventRender, pq.Selected())
}

func TestTogglePhase(t *testing.T) {
	mask := debugui.TogglePhase(engine.EventNone, engine.EventRender, true)
	assert.Equal(t, engine.EventRender, mask)
	mask = debugui.TogglePhase(mask, engine.EventUpdate, true)
	assert.Equal(t, engine.EventUpdate|engine.EventRender, mask)
	mask = debugui.TogglePhase(mask, engine.EventRender, false)
	assert.Equal(t, engine.EventUpdate, mask)
	assert.Equal(t, engine.EventUpdate, debugui.TogglePhase(mask, engine.EventRender2D, false))
}

func TestComponentLayout(t *testing.T) {
	lc := debugui.NewLayoutCache()

	t.Run("Fields", func(t *testing.T) {
		l := lc.Layout(newMarker("a", engine.EventUpdate))
		assert.Equal(t, "debugui_test.marker", l.Name)
		assert.Equal(t, reflect.TypeOf(marker{}), l.Type)

		var names []string
		for _, f := range l.Fields {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"Label", "Weight"}, names)
		assert.Equal(t, debugui.FieldString, l.Fields[0].Kind)
		assert.Equal(t, debugui.FieldFloat, l.Fields[1].Kind)
		assert.Equal(t, 2, l.Editable)

		assert.Same(t, l, lc.Layout(newMarker("b", engine.EventRender)))
	})

	t.Run("Kinds", func(t *testing.T) {
		type nested struct {
			Next  *marker
			Items []int
			Index map[string]int
			Pos   [3]float32
			On    bool
		}
		fields := lc.Fields(reflect.TypeOf(nested{}))
		require.Len(t, fields, 5)
		assert.True(t, fields[0].Pointer)
		assert.Equal(t, debugui.FieldStruct, fields[0].Kind)
		assert.Equal(t, reflect.TypeOf(marker{}), fields[0].Type)
		assert.Equal(t, debugui.FieldSlice, fields[1].Kind)
		assert.Equal(t, debugui.FieldMap, fields[2].Kind)
		assert.Equal(t, debugui.FieldArray, fields[3].Kind)
		assert.True(t, fields[4].Kind.Editable())
		assert.False(t, fields[3].Kind.Editable())

		assert.Empty(t, lc.Fields(reflect.TypeOf(0)))
	})

	t.Run("Value", func(t *testing.T) {
		type holder struct {
			Next *marker
		}
		f := lc.Fields(reflect.TypeOf(holder{}))[0]

		_, ok := f.Value(reflect.ValueOf(holder{}))
		assert.False(t, ok)

		h := holder{Next: newMarker("x", engine.EventUpdate)}
		v, ok := f.Value(reflect.ValueOf(&h).Elem())
		require.True(t, ok)
		label := lc.Fields(f.Type)[0]
		lv, ok := label.Value(v)
		require.True(t, ok)
		assert.Equal(t, "x", lv.String())
		lv.SetString("y")
		assert.Equal(t, "y", h.Next.Label)
	})
}

func TestComponentState(t *testing.T) {
	g := engine.New(engine.Options{})
	defer g.Close()

	c := newMarker("a", engine.EventUpdate|engine.EventRender)
	s := debugui.StateOf(c)
	assert.False(t, s.Enabled)
	assert.Equal(t, engine.EventUpdate|engine.EventRender, s.Mask)

	a := spawn(t, g, "state", c)
	s = debugui.StateOf(c)
	assert.Equal(t, c.ID(), s.ID)
	assert.True(t, s.Enabled)
	assert.False(t, s.Started)

	require.NoError(t, g.Tick(0.016))
	require.NoError(t, a.SetComponentEnabled(c, false))
	s = debugui.StateOf(c)
	assert.True(t, s.Started)
	assert.False(t, s.Enabled)
}

func TestPerformanceStats(t *testing.T) {
	ps := debugui.NewPerformanceStats(4)
	assert.Zero(t, ps.AverageFrameTime())

	ps.Record(0.010)
	ps.Record(0.020)
	assert.InDelta(t, 15.0, ps.AverageFrameTime(), 0.001)

	for range 4 {
		ps.Record(0.005)
	}
	assert.InDelta(t, 5.0, ps.AverageFrameTime(), 0.001)
}

func TestSpawn(t *testing.T) {
	g := engine.New(engine.Options{})
	defer g.Close()

	in, err := debugui.Spawn(g)
	require.NoError(t, err)
	require.NotNil(t, in.Browser)

	a, ok := in.Actor()
	require.True(t, ok)
	assert.Equal(t, "debugui", a.Name())
	assert.Equal(t, engine.EventUpdate, a.EventTypes())
}

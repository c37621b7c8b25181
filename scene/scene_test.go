package scene_test

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/blockworks/components"
	"github.com/plus3/blockworks/engine"
	"github.com/plus3/blockworks/scene"
	"github.com/plus3/blockworks/voxel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demo = `
camera:
  eye: [0, 30, 60]
  target: [0, 0, 0]
  fov: 50
actors:
  - name: terrain
    components:
      - type: World
        params:
          radius: 1
          layers:
            - {block: stone, height: 3}
            - {block: grass, height: 1}
  - name: cube
    position: [0, 8, 0]
    rotation: [0, 90, 0]
    dynamic: true
    mass: 2
    components:
      - type: renderer
        params: {size: 2, color: "#ff8000"}
      - type: spinner
        enabled: false
        params: {axis: [0, 1, 0], speed: 30}
      - type: impulse
        events: none
  - name: overlay
    components:
      - type: hud
      - type: script
        params:
          name: blink
          source: |
            function draw2d() draw_text("hi", 0, 0) end
`

func newRegistry(t *testing.T) *scene.Registry {
	t.Helper()
	r := scene.NewRegistry()
	require.NoError(t, scene.RegisterBuiltins(r, scene.BuiltinOptions{WorldRadius: 2}))
	return r
}

func TestParse(t *testing.T) {
	f, err := scene.Parse([]byte(demo))
	require.NoError(t, err)

	require.Len(t, f.Actors, 3)
	cube := f.Actors[1]
	assert.Equal(t, "cube", cube.Name)
	assert.Equal(t, []float32{0, 8, 0}, cube.Position)
	assert.True(t, cube.Dynamic)
	require.Len(t, cube.Components, 3)
	assert.False(t, cube.Components[1].IsEnabled())
	assert.True(t, cube.Components[0].IsEnabled())
	assert.Equal(t, "none", cube.Components[2].Events)
	assert.Equal(t, float32(50), f.Camera.FovY)

	t.Run("bad vectors", func(t *testing.T) {
		_, err := scene.Parse([]byte("actors:\n  - name: x\n    position: [1, 2]\n"))
		assert.ErrorContains(t, err, "position needs 3 values")
	})
	t.Run("missing type", func(t *testing.T) {
		_, err := scene.Parse([]byte("actors:\n  - name: x\n    components:\n      - params: {}\n"))
		assert.ErrorContains(t, err, "has no type")
	})
	t.Run("invalid yaml", func(t *testing.T) {
		_, err := scene.Parse([]byte("actors: ["))
		assert.Error(t, err)
	})
}

func TestRegistry(t *testing.T) {
	r := newRegistry(t)
	assert.Equal(t, []string{"chunk", "hud", "impulse", "renderer", "script", "spinner", "world"}, r.Names())

	_, ok := r.Lookup("ReNdErEr")
	assert.True(t, ok)
	assert.Error(t, r.Register("HUD", func(scene.Params) (engine.Component, error) { return nil, nil }))

	_, err := r.Build("teapot", nil)
	assert.ErrorContains(t, err, "unknown component type")

	_, err = r.Build("spinner", scene.Params{"speed": "fast"})
	assert.ErrorContains(t, err, "want number")

	c, err := r.Build("chunk", scene.Params{"coord": []any{1, 0, -2}})
	require.NoError(t, err)
	chunk := c.(*voxel.ChunkComponent).Chunk()
	assert.Equal(t, voxel.Coord{X: 1, Z: -2}, chunk.Coord())
	assert.Equal(t, voxel.Grass, chunk.Get(0, 6, 0))
}

func TestParams(t *testing.T) {
	p := scene.Params{
		"n":    3,
		"f":    1.5,
		"s":    "x",
		"hex":  "#10203040",
		"list": []any{1, 2, 3},
	}

	n, err := p.Int("n", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, _ := p.Float("f", 0)
	assert.Equal(t, 1.5, f)
	d, _ := p.Float("missing", 7)
	assert.Equal(t, 7.0, d)

	clr, err := p.Color("hex", color.RGBA{})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x10, 0x20, 0x30, 0x40}, clr)

	clr, err = p.Color("list", color.RGBA{})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, clr)

	v, err := p.Vec3("list", mgl32.Vec3{})
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, v)

	_, err = p.Vec3("s", mgl32.Vec3{})
	assert.Error(t, err)
	_, err = p.Bool("s", false)
	assert.Error(t, err)
}

func TestInstantiate(t *testing.T) {
	f, err := scene.Parse([]byte(demo))
	require.NoError(t, err)

	g := engine.New(engine.Options{})
	defer g.Close()

	entities, err := scene.Instantiate(context.Background(), g, f, newRegistry(t))
	require.NoError(t, err)
	require.Len(t, entities, 3)

	cube, ok := g.Actor(entities[1])
	require.True(t, ok)
	assert.Equal(t, "cube", cube.Name())
	assert.True(t, cube.Body().Dynamic())
	want := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	assert.True(t, want.ApproxEqualThreshold(cube.Transform().Rotation(), 1e-5))

	spinner, ok := engine.GetComponent[*components.Spinner](cube)
	require.True(t, ok)
	assert.False(t, spinner.Enabled())
	impulse, _ := engine.GetComponent[*components.Impulse](cube)
	assert.Equal(t, engine.EventNone, impulse.EventTypes())
	assert.Equal(t, engine.EventRender, cube.EventTypes())

	assert.Equal(t, mgl32.Vec3{0, 30, 60}, g.Camera().Eye)
	assert.Equal(t, float32(50), g.Camera().FovY)

	require.NoError(t, g.Tick(0.016))
	terrain, _ := g.Actor(entities[0])
	world, ok := engine.GetComponent[*voxel.WorldComponent](terrain)
	require.True(t, ok)
	assert.Equal(t, 9, world.Loaded())
	assert.Equal(t, voxel.Grass, world.Block(0, 3, 0))
}

func TestInstantiateRollback(t *testing.T) {
	g := engine.New(engine.Options{})
	defer g.Close()

	f, err := scene.Parse([]byte(`
actors:
  - name: ok
    components: [{type: hud}]
  - name: broken
    components: [{type: nope}]
`))
	require.NoError(t, err)

	_, err = scene.Instantiate(context.Background(), g, f, newRegistry(t))
	assert.ErrorContains(t, err, "broken")
	assert.Equal(t, 0, g.ActorCount())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = scene.Instantiate(ctx, g, f, newRegistry(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wave.lua"), []byte(`function update(dt) translate(0, args_speed or 0, 0) end`), 0o644))
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
actors:
  - name: scripted
    components:
      - type: script
        params: {path: wave.lua}
`), 0o644))

	f, err := scene.Load(path)
	require.NoError(t, err)

	r := scene.NewRegistry()
	require.NoError(t, scene.RegisterBuiltins(r, scene.BuiltinOptions{ScriptDir: dir}))

	g := engine.New(engine.Options{})
	defer g.Close()
	entities, err := scene.Instantiate(context.Background(), g, f, r)
	require.NoError(t, err)

	a, _ := g.Actor(entities[0])
	s, ok := engine.GetComponent[*components.Script](a)
	require.True(t, ok)
	assert.Equal(t, "wave", s.Name())
	assert.Equal(t, engine.EventUpdate, s.EventTypes())

	_, err = scene.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDemoScene(t *testing.T) {
	f, err := scene.Load(filepath.Join("..", "scenes", "demo.yaml"))
	require.NoError(t, err)

	r := scene.NewRegistry()
	require.NoError(t, scene.RegisterBuiltins(r, scene.BuiltinOptions{ScriptDir: filepath.Join("..", "scripts"), WorldRadius: 1}))

	g := engine.New(engine.Options{})
	defer g.Close()
	entities, err := scene.Instantiate(context.Background(), g, f, r)
	require.NoError(t, err)
	require.Len(t, entities, len(f.Actors))

	for range 3 {
		require.NoError(t, g.Tick(1.0/60))
	}

	for _, e := range entities {
		a, ok := g.Actor(e)
		require.True(t, ok)
		s, ok := engine.GetComponent[*components.Script](a)
		if ok {
			assert.NoError(t, s.Err(), a.Name())
			assert.True(t, s.Enabled(), a.Name())
		}
	}

	orbiter, _ := g.Actor(entities[3])
	assert.Equal(t, "orbiter", orbiter.Name())
	pos := orbiter.Transform().Position()
	assert.InDelta(t, 10, pos.Y(), 1e-4)
	assert.InDelta(t, 8, mgl32.Vec2{pos.X(), pos.Z()}.Len(), 1e-3)

	dormant, _ := g.Actor(entities[5])
	assert.Equal(t, engine.EventNone, dormant.EventTypes())
}

type tracked struct {
	engine.ComponentBase
	stops int
}

func (c *tracked) Stop() { c.stops++ }

func TestInstantiateStopsUnattached(t *testing.T) {
	var made []*tracked
	r := newRegistry(t)
	require.NoError(t, r.Register("tracked", func(scene.Params) (engine.Component, error) {
		c := &tracked{ComponentBase: engine.NewComponentBase(engine.EventUpdate)}
		made = append(made, c)
		return c, nil
	}))

	g := engine.New(engine.Options{})
	defer g.Close()

	t.Run("BuildFails", func(t *testing.T) {
		made = nil
		f := &scene.File{Actors: []scene.ActorSpec{{
			Name:       "a",
			Components: []scene.ComponentSpec{{Type: "tracked"}, {Type: "tracked"}, {Type: "nope"}},
		}}}
		_, err := scene.Instantiate(context.Background(), g, f, r)
		require.Error(t, err)
		require.Len(t, made, 2)
		for _, c := range made {
			assert.Equal(t, 1, c.stops)
		}
	})

	t.Run("AttachFails", func(t *testing.T) {
		made = nil
		f := &scene.File{Actors: []scene.ActorSpec{{
			Name: "b",
			Components: []scene.ComponentSpec{
				{Type: "tracked"},
				{Type: "tracked", Events: "sideways"},
				{Type: "tracked"},
			},
		}}}
		_, err := scene.Instantiate(context.Background(), g, f, r)
		assert.ErrorContains(t, err, "component 1")
		require.Len(t, made, 3)
		for i, c := range made {
			assert.Equal(t, 1, c.stops, "component %d", i)
			assert.False(t, c.Attached())
		}
	})

	assert.Equal(t, 0, g.ActorCount())
}

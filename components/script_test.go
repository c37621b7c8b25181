package components_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/blockworks/components"
	"github.com/plus3/blockworks/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptMask(t *testing.T) {
	cases := []struct {
		source string
		mask   engine.EventType
	}{
		{"x = 1", engine.EventNone},
		{"function update(dt) end", engine.EventUpdate},
		{"function draw() end", engine.EventRender},
		{"function update(dt) end function draw2d() end", engine.EventUpdate | engine.EventRender2D},
		{"function update(dt) end function draw() end function draw2d() end", engine.EventAll},
	}
	for _, tc := range cases {
		t.Run(tc.mask.String(), func(t *testing.T) {
			s, err := components.NewScript("mask", tc.source, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.mask, s.EventTypes())
		})
	}

	_, err := components.NewScript("bad", "function (", nil)
	assert.Error(t, err)
}

func TestScriptHooks(t *testing.T) {
	g, device := newGame(t)
	a, _ := g.CreateActor(engine.ActorOptions{Position: mgl32.Vec3{1, 0, 0}})

	s, err := components.NewScript("mover", `
		started = 0
		function start()
			started = started + 1
			log("mover started")
		end
		function update(dt)
			local x, y, z = get_position()
			set_position(x + params.speed * dt, y, z)
		end
		function draw2d()
			local x, y, z = get_position()
			draw_text(string.format("x=%.1f", x), 4, 4)
			draw_rect(0, 0, 10, 10, 255, 0, 0)
		end
	`, map[string]any{"speed": 10})
	require.NoError(t, err)
	a.AddComponent(s)

	require.NoError(t, g.Tick(0.5))
	require.NoError(t, g.Tick(0.5))

	assert.InDelta(t, 11, a.Transform().Position().X(), 1e-4)
	assert.Equal(t, []string{"x=6.0", "x=11.0"}, device.texts)
	assert.Len(t, device.fills, 2)
	assert.NoError(t, s.Err())
}

func TestScriptErrorDisables(t *testing.T) {
	g, _ := newGame(t)
	a, _ := g.CreateActor(engine.ActorOptions{})

	s, err := components.NewScript("faulty", `
		calls = 0
		function update(dt)
			calls = calls + 1
			if calls == 2 then error("bad frame") end
		end
	`, nil)
	require.NoError(t, err)
	id, _ := a.AddComponent(s)

	require.NoError(t, g.Tick(0.016))
	assert.True(t, s.Enabled())

	require.NoError(t, g.Tick(0.016), "script errors do not abort the frame")
	require.Error(t, s.Err())
	assert.Contains(t, s.Err().Error(), "bad frame")
	assert.False(t, s.Enabled())
	assert.False(t, a.InPhase(id, engine.EventUpdate))
	assert.Equal(t, engine.EventUpdate, s.EventTypes())
}

func TestScriptDestroy(t *testing.T) {
	g, _ := newGame(t)
	a, _ := g.CreateActor(engine.ActorOptions{})
	s, err := components.NewScript("fuse", `
		function update(dt)
			if tick() == 3 then destroy() end
		end
	`, nil)
	require.NoError(t, err)
	a.AddComponent(s)

	for i := 0; i < 3; i++ {
		require.NoError(t, g.Tick(0.016))
	}
	_, ok := g.Actor(a.Entity())
	assert.False(t, ok)
	assert.False(t, s.Attached())
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spin.lua")
	require.NoError(t, os.WriteFile(path, []byte(`
		function update(dt) rotate(params.speed * dt, 0, 1, 0) end
	`), 0o644))

	s, err := components.LoadScript(path, map[string]any{"speed": 90.0})
	require.NoError(t, err)
	assert.Equal(t, "spin", s.Name())

	g, _ := newGame(t)
	a, _ := g.CreateActor(engine.ActorOptions{})
	a.AddComponent(s)
	require.NoError(t, g.Tick(1))

	want := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	assert.True(t, want.ApproxEqualThreshold(a.Transform().Rotation(), 1e-4))

	_, err = components.LoadScript(filepath.Join(t.TempDir(), "missing.lua"), nil)
	assert.Error(t, err)
}

package components

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/blockworks/engine"
	"github.com/plus3/blockworks/scripting"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Script hooks a Lua chunk into the frame phases. The chunk may define any
// of start(), update(dt), draw() and draw2d(); the component takes part in
// exactly the phases whose function is defined. A Lua error is logged and
// disables the component.
type Script struct {
	engine.ComponentBase

	name  string
	vm    *scripting.VM
	log   *zap.Logger
	frame *engine.Frame
	err   error
}

// NewScript loads source into a fresh VM. params is exposed to the script as
// the global table "params".
func NewScript(name, source string, params map[string]any) (*Script, error) {
	vm := scripting.New(name, nil)
	s := &Script{name: name, vm: vm, log: zap.NewNop()}
	s.register()
	vm.SetTable("params", params)

	if err := vm.Load(source); err != nil {
		vm.Close()
		return nil, err
	}

	mask := engine.EventNone
	if vm.HasFunction("update") {
		mask |= engine.EventUpdate
	}
	if vm.HasFunction("draw") {
		mask |= engine.EventRender
	}
	if vm.HasFunction("draw2d") {
		mask |= engine.EventRender2D
	}
	s.ComponentBase = engine.NewComponentBase(mask)
	return s, nil
}

// LoadScript reads a script file and loads it with NewScript.
func LoadScript(path string, params map[string]any) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return NewScript(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), string(src), params)
}

func (s *Script) Name() string { return s.name }

// Err returns the error that disabled the script, if any.
func (s *Script) Err() error { return s.err }

func (s *Script) Start(f *engine.Frame) {
	s.log = f.Game.Logger().With(zap.String("script", s.name))
	s.vm.SetLogger(s.log)
	if s.vm.HasFunction("start") {
		s.call(f, "start")
	}
}

func (s *Script) Update(f *engine.Frame) { s.call(f, "update", lua.LNumber(f.DeltaTime)) }
func (s *Script) Draw(f *engine.Frame)   { s.call(f, "draw") }
func (s *Script) Draw2D(f *engine.Frame) { s.call(f, "draw2d") }

func (s *Script) Stop() {
	s.vm.Close()
}

func (s *Script) call(f *engine.Frame, fn string, args ...lua.LValue) {
	if s.err != nil {
		return
	}
	s.frame = f
	defer func() { s.frame = nil }()

	if err := s.vm.Call(fn, args...); err != nil {
		s.err = err
		s.log.Error("script failed, disabling", zap.String("function", fn), zap.Error(err))
		if a, ok := s.Actor(); ok {
			_ = a.SetComponentEnabled(s, false)
		}
	}
}

func (s *Script) register() {
	s.vm.Register("get_position", s.luaGetPosition)
	s.vm.Register("set_position", s.luaSetPosition)
	s.vm.Register("translate", s.luaTranslate)
	s.vm.Register("rotate", s.luaRotate)
	s.vm.Register("impulse", s.luaImpulse)
	s.vm.Register("project", s.luaProject)
	s.vm.Register("draw_rect", s.luaDrawRect)
	s.vm.Register("draw_text", s.luaDrawText)
	s.vm.Register("tick", s.luaTick)
	s.vm.Register("destroy", s.luaDestroy)
	s.vm.Register("log", s.luaLog)
}

func (s *Script) actor(L *lua.LState) *engine.Actor {
	a, ok := s.Actor()
	if !ok {
		L.RaiseError("script is not attached to a live actor")
	}
	return a
}

func (s *Script) current(L *lua.LState) *engine.Frame {
	if s.frame == nil {
		L.RaiseError("no frame in progress")
	}
	return s.frame
}

func checkVec3(L *lua.LState, first int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(L.CheckNumber(first)),
		float32(L.CheckNumber(first + 1)),
		float32(L.CheckNumber(first + 2)),
	}
}

func (s *Script) luaGetPosition(L *lua.LState) int {
	p := s.actor(L).Transform().Position()
	L.Push(lua.LNumber(p.X()))
	L.Push(lua.LNumber(p.Y()))
	L.Push(lua.LNumber(p.Z()))
	return 3
}

func (s *Script) luaSetPosition(L *lua.LState) int {
	s.actor(L).Transform().SetPosition(checkVec3(L, 1))
	return 0
}

func (s *Script) luaTranslate(L *lua.LState) int {
	s.actor(L).Transform().Translate(checkVec3(L, 1))
	return 0
}

// rotate(degrees, ax, ay, az)
func (s *Script) luaRotate(L *lua.LState) int {
	angle := mgl32.DegToRad(float32(L.CheckNumber(1)))
	axis := checkVec3(L, 2)
	if axis.Len() == 0 {
		L.ArgError(2, "zero rotation axis")
	}
	s.actor(L).Transform().Rotate(mgl32.QuatRotate(angle, axis.Normalize()))
	return 0
}

func (s *Script) luaImpulse(L *lua.LState) int {
	if b := s.actor(L).Body(); b != nil {
		b.ApplyImpulse(checkVec3(L, 1))
	}
	return 0
}

// project(x, y, z) returns screen x, y or nil when off screen.
func (s *Script) luaProject(L *lua.LState) int {
	f := s.current(L)
	w, h := f.Device.Size()
	x, y, _, ok := f.Game.Camera().Project(checkVec3(L, 1), w, h)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(x))
	L.Push(lua.LNumber(y))
	return 2
}

// draw_rect(x, y, w, h, r, g, b [, a]) with channels in 0..255.
func (s *Script) luaDrawRect(L *lua.LState) int {
	f := s.current(L)
	clr := color.RGBA{
		R: uint8(L.CheckInt(5)),
		G: uint8(L.CheckInt(6)),
		B: uint8(L.CheckInt(7)),
		A: uint8(L.OptInt(8, 255)),
	}
	f.Device.FillRect(
		float32(L.CheckNumber(1)), float32(L.CheckNumber(2)),
		float32(L.CheckNumber(3)), float32(L.CheckNumber(4)),
		clr,
	)
	return 0
}

func (s *Script) luaDrawText(L *lua.LState) int {
	f := s.current(L)
	f.Device.DebugText(L.CheckString(1), L.CheckInt(2), L.CheckInt(3))
	return 0
}

func (s *Script) luaTick(L *lua.LState) int {
	L.Push(lua.LNumber(s.current(L).Tick))
	return 1
}

func (s *Script) luaDestroy(L *lua.LState) int {
	f := s.current(L)
	f.Commands.Destroy(s.actor(L).Entity())
	return 0
}

func (s *Script) luaLog(L *lua.LState) int {
	s.log.Info(L.CheckString(1))
	return 0
}

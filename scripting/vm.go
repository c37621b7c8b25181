// Package scripting wraps a gopher-lua state for component scripts.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// APIVersion is exposed to scripts as the API_VERSION global.
const APIVersion = 1

// VM is a single Lua state. It is not safe for concurrent use; scripts run
// on the game's main goroutine.
type VM struct {
	name  string
	state *lua.LState
	log   *zap.Logger
}

// New creates a VM with the standard libraries opened.
func New(name string, log *zap.Logger) *VM {
	if log == nil {
		log = zap.NewNop()
	}
	state := lua.NewState(lua.Options{SkipOpenLibs: false})
	state.SetGlobal("API_VERSION", lua.LNumber(APIVersion))
	return &VM{name: name, state: state, log: log}
}

func (vm *VM) Name() string { return vm.name }

// SetLogger replaces the logger used for script diagnostics.
func (vm *VM) SetLogger(log *zap.Logger) {
	if log != nil {
		vm.log = log
	}
}

// Load runs source as a chunk, defining whatever globals it declares.
func (vm *VM) Load(source string) error {
	if err := vm.state.DoString(source); err != nil {
		return fmt.Errorf("load %s: %w", vm.name, err)
	}
	vm.log.Debug("loaded lua script", zap.String("script", vm.name))
	return nil
}

// LoadFile runs the file at path.
func (vm *VM) LoadFile(path string) error {
	if err := vm.state.DoFile(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	vm.log.Debug("loaded lua script", zap.String("file", path))
	return nil
}

// LoadDir runs every .lua file in dir in directory order. A missing
// directory is not an error.
func (vm *VM) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		if err := vm.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// HasFunction reports whether the global name is a function.
func (vm *VM) HasFunction(name string) bool {
	return vm.state.GetGlobal(name).Type() == lua.LTFunction
}

// Call invokes the global function name in protected mode, discarding its
// results. Calling an undefined function is an error.
func (vm *VM) Call(name string, args ...lua.LValue) error {
	fn := vm.state.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return fmt.Errorf("%s: lua function %s not found", vm.name, name)
	}
	if err := vm.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		return fmt.Errorf("%s: %s: %w", vm.name, name, err)
	}
	return nil
}

// CallNumber invokes the global function name and returns its first result
// as a number.
func (vm *VM) CallNumber(name string, args ...lua.LValue) (float64, error) {
	fn := vm.state.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return 0, fmt.Errorf("%s: lua function %s not found", vm.name, name)
	}
	if err := vm.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return 0, fmt.Errorf("%s: %s: %w", vm.name, name, err)
	}

	result := vm.state.Get(-1)
	vm.state.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("%s: %s returned %s, want number", vm.name, name, result.Type())
	}
	return float64(n), nil
}

// Register exposes fn to scripts as the global name.
func (vm *VM) Register(name string, fn lua.LGFunction) {
	vm.state.SetGlobal(name, vm.state.NewFunction(fn))
}

func (vm *VM) SetGlobal(name string, v lua.LValue) {
	vm.state.SetGlobal(name, v)
}

func (vm *VM) Global(name string) lua.LValue {
	return vm.state.GetGlobal(name)
}

// SetTable sets the global name to a table built from values.
func (vm *VM) SetTable(name string, values map[string]any) {
	t := vm.state.NewTable()
	for k, v := range values {
		t.RawSetString(k, vm.Value(v))
	}
	vm.state.SetGlobal(name, t)
}

func (vm *VM) Close() {
	vm.state.Close()
}

// Value converts plain Go values, as decoded from YAML, to Lua values.
// Unsupported types become nil.
func (vm *VM) Value(v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case float32:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	case []any:
		t := vm.state.CreateTable(len(v), 0)
		for _, item := range v {
			t.Append(vm.Value(item))
		}
		return t
	case map[string]any:
		t := vm.state.CreateTable(0, len(v))
		for k, item := range v {
			t.RawSetString(k, vm.Value(item))
		}
		return t
	default:
		return lua.LNil
	}
}

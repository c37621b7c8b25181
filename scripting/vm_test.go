package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plus3/blockworks/scripting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestVM(t *testing.T) {
	t.Run("load and call", func(t *testing.T) {
		vm := scripting.New("test", nil)
		defer vm.Close()

		require.NoError(t, vm.Load(`
			counter = 0
			function bump(n) counter = counter + n end
			function double(n) return n * 2 end
		`))
		assert.True(t, vm.HasFunction("bump"))
		assert.False(t, vm.HasFunction("counter"))
		assert.False(t, vm.HasFunction("missing"))

		require.NoError(t, vm.Call("bump", lua.LNumber(3)))
		require.NoError(t, vm.Call("bump", lua.LNumber(4)))
		assert.Equal(t, lua.LNumber(7), vm.Global("counter"))

		n, err := vm.CallNumber("double", lua.LNumber(21))
		require.NoError(t, err)
		assert.Equal(t, 42.0, n)
		assert.Equal(t, lua.LNumber(scripting.APIVersion), vm.Global("API_VERSION"))
	})

	t.Run("errors are wrapped", func(t *testing.T) {
		vm := scripting.New("broken", nil)
		defer vm.Close()

		assert.Error(t, vm.Load("function ("))
		require.NoError(t, vm.Load(`function fail() error("nope") end`))

		err := vm.Call("fail")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope")
		assert.Contains(t, err.Error(), "broken")
		assert.Error(t, vm.Call("missing"))
	})

	t.Run("registered functions", func(t *testing.T) {
		vm := scripting.New("api", nil)
		defer vm.Close()

		var got float64
		vm.Register("report", func(L *lua.LState) int {
			got = float64(L.CheckNumber(1))
			L.Push(lua.LString("ok"))
			return 1
		})
		require.NoError(t, vm.Load(`result = report(2.5)`))
		assert.Equal(t, 2.5, got)
		assert.Equal(t, lua.LString("ok"), vm.Global("result"))
	})

	t.Run("params table", func(t *testing.T) {
		vm := scripting.New("params", nil)
		defer vm.Close()

		vm.SetTable("params", map[string]any{"speed": 2, "name": "cube", "tags": []any{"a", "b"}})
		n, err := vm.CallNumber("eval", lua.LNil)
		assert.Error(t, err)
		assert.Zero(t, n)

		require.NoError(t, vm.Load(`function eval() return params.speed * #params.tags end`))
		n, err = vm.CallNumber("eval")
		require.NoError(t, err)
		assert.Equal(t, 4.0, n)
	})

	t.Run("load dir", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte("a = 1"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte("b = a + 1"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not lua"), 0o644))

		vm := scripting.New("dir", nil)
		defer vm.Close()
		require.NoError(t, vm.LoadDir(dir))
		assert.Equal(t, lua.LNumber(2), vm.Global("b"))
		assert.NoError(t, vm.LoadDir(filepath.Join(dir, "missing")))
	})
}

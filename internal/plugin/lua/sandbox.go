package lua

import (
	"fmt"
	"io"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// builtinModules are the gopher-lua modules scripts may require.
var builtinModules = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
}

// Sandbox restricts Lua execution to safe operations.
type Sandbox struct {
	L *lua.LState

	// out receives print output.
	out io.Writer

	// modules are host modules registered with PreloadModule.
	modules map[string]bool
}

// NewSandbox creates a new sandbox for the Lua state.
func NewSandbox(L *lua.LState, out io.Writer) *Sandbox {
	return &Sandbox{
		L:       L,
		out:     out,
		modules: make(map[string]bool),
	}
}

// Install sets up the sandbox restrictions.
func (s *Sandbox) Install() {
	// Remove functions that load code from disk or strings.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "module"} {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installPrint()
	s.installRequire()
}

// AllowModule permits require(name) for a preloaded host module.
func (s *Sandbox) AllowModule(name string) {
	s.modules[name] = true
}

// Modules returns the permitted host modules, sorted.
func (s *Sandbox) Modules() []string {
	names := make([]string, 0, len(s.modules))
	for name := range s.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// installPrint replaces print so output goes to the sandbox writer.
func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(s.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// installRequire clears package.path/cpath so nothing loads from disk and
// replaces require with a version that only resolves builtin and host modules.
func (s *Sandbox) installRequire() {
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	originalRequire := s.L.GetGlobal("require")

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)

		if !builtinModules[modName] && !s.modules[modName] {
			L.RaiseError("module %q is not available", modName)
			return 0
		}

		L.Push(originalRequire)
		L.Push(lua.LString(modName))
		L.Call(1, 1)
		return 1
	}))
}

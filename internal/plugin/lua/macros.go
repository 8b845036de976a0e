package lua

import (
	"context"
	"errors"
	"math"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/keymacro/internal/input/key"
	"github.com/dshills/keymacro/internal/macro"
	"github.com/dshills/keymacro/internal/macro/loop"
	"github.com/dshills/keymacro/internal/macro/menu"
	"github.com/dshills/keymacro/internal/macro/seq"
	"github.com/dshills/keymacro/internal/prompt"
)

// ModuleName is the name scripts pass to require.
const ModuleName = "keymacro"

// MacroOptions configures the keymacro module.
type MacroOptions struct {
	// QuitKey is the default menu quit chord. Empty uses menu.DefaultQuitKey.
	QuitKey string

	// FirstKey is the default first auto-assigned menu key. Zero uses
	// menu.DefaultFirstKey.
	FirstKey rune

	// MaxIterations bounds every repeat_until loop. Zero is unbounded.
	MaxIterations int

	Logger *zap.Logger
}

// MacroModule implements the keymacro Lua module.
type MacroModule struct {
	reader prompt.Reader
	opts   MacroOptions
}

// OpenMacros makes require("keymacro") available to scripts run in state.
// Menus read key chords from reader.
func OpenMacros(state *State, reader prompt.Reader, opts MacroOptions) *MacroModule {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	m := &MacroModule{reader: reader, opts: opts}
	state.PreloadModule(ModuleName, m.loader)
	return m
}

func (m *MacroModule) loader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "read_key_menu", L.NewFunction(m.readKeyMenu))
	L.SetField(mod, "repeat_until", L.NewFunction(m.repeatUntil))
	L.SetField(mod, "subset", L.NewFunction(m.subset))
	L.SetField(mod, "range", L.NewFunction(m.rangeFn))
	L.SetField(mod, "describe_key", L.NewFunction(m.describeKey))
	L.SetField(mod, "is_cancelled", L.NewFunction(m.isCancelled))

	L.Push(mod)
	return 1
}

// runContext returns the context of the run in progress.
func runContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// read_key_menu{options = {{label, fn, key}, ...}, header = "", footer = "",
// quit_key = "", first_key = ""} -> value
// Shows a key menu and returns the chosen option's function result.
// Options may also use named fields {label = ..., action = ..., key = ...}.
// Quitting raises a cancellation error; see is_cancelled.
func (m *MacroModule) readKeyMenu(L *lua.LState) int {
	spec := L.CheckTable(1)
	b := NewBridge(L)

	optsTbl, ok := b.GetTableTable(spec, "options")
	if !ok {
		L.ArgError(1, "options table required")
		return 0
	}

	entries := b.Array(optsTbl)
	items := make([]menu.Item, len(entries))
	for i, entry := range entries {
		tbl, ok := entry.(*lua.LTable)
		if !ok {
			L.ArgError(1, "each option must be a table")
			return 0
		}
		items[i] = m.menuItem(b, tbl)
	}

	opts := []menu.Option{menu.WithLogger(m.opts.Logger)}
	if m.opts.QuitKey != "" {
		opts = append(opts, menu.WithQuitKey(m.opts.QuitKey))
	}
	if m.opts.FirstKey != 0 {
		opts = append(opts, menu.WithFirstKey(m.opts.FirstKey))
	}
	if s, ok := b.GetTableString(spec, "header"); ok {
		opts = append(opts, menu.WithHeader(s))
	}
	if s, ok := b.GetTableString(spec, "footer"); ok {
		opts = append(opts, menu.WithFooter(s))
	}
	if s, ok := b.GetTableString(spec, "quit_key"); ok {
		opts = append(opts, menu.WithQuitKey(s))
	}
	if s, ok := b.GetTableString(spec, "first_key"); ok {
		r := []rune(s)
		if len(r) != 1 {
			L.ArgError(1, "first_key must be a single character")
			return 0
		}
		opts = append(opts, menu.WithFirstKey(r[0]))
	}

	v, err := menu.Read(runContext(L), m.reader, items, opts...)
	if err != nil {
		return raise(L, err)
	}
	L.Push(b.ToLuaValue(v))
	return 1
}

// menuItem reads {label, fn, key} or {label = , action = , key = }.
func (m *MacroModule) menuItem(b *Bridge, tbl *lua.LTable) menu.Item {
	var item menu.Item

	if s, ok := tbl.RawGetInt(1).(lua.LString); ok {
		item.Label = string(s)
	} else if s, ok := b.GetTableString(tbl, "label"); ok {
		item.Label = s
	}

	fn, _ := tbl.RawGetInt(2).(*lua.LFunction)
	if fn == nil {
		fn, _ = b.GetTableFunc(tbl, "action")
	}
	if fn != nil {
		item.Action = func() (any, error) {
			return b.CallFunc(fn)
		}
	}

	if s, ok := tbl.RawGetInt(3).(lua.LString); ok {
		item.Key = string(s)
	} else if s, ok := b.GetTableString(tbl, "key"); ok {
		item.Key = s
	}
	return item
}

// repeat_until(initial, next [, stop [, bindings [, max]]]) -> value
// Calls initial, then next until stop(value) is true. Without stop the
// loop ends on the first value other than nil and false. Both functions
// receive one table holding the bindings; it persists across iterations.
// Function values in bindings are called once to produce the binding.
func (m *MacroModule) repeatUntil(L *lua.LState) int {
	initial := L.CheckFunction(1)
	next := L.CheckFunction(2)
	stop := L.OptFunction(3, nil)
	bindings := L.OptTable(4, nil)
	limit := L.OptInt(5, m.opts.MaxIterations)

	b := NewBridge(L)
	opts := []loop.Option{
		loop.WithLogger(m.opts.Logger),
		loop.WithMaxIterations(limit),
	}

	if bindings != nil {
		var names []string
		var badKey bool
		bindings.ForEach(func(k, _ lua.LValue) {
			if s, ok := k.(lua.LString); ok {
				names = append(names, string(s))
			} else {
				badKey = true
			}
		})
		if badKey {
			L.ArgError(4, "binding names must be strings")
			return 0
		}
		sort.Strings(names)

		binds := make([]loop.Binding, len(names))
		for i, name := range names {
			v := bindings.RawGetString(name)
			if fn, ok := v.(*lua.LFunction); ok {
				binds[i] = loop.BindFunc(name, func(*loop.Scope) (any, error) {
					return b.CallFunc(fn)
				})
				continue
			}
			binds[i] = loop.Bind(name, v)
		}
		opts = append(opts, loop.WithBindings(binds...))
	}

	var env *lua.LTable
	scopeTable := func(sc *loop.Scope) *lua.LTable {
		if env == nil {
			env = L.NewTable()
			for _, name := range sc.Names() {
				v, _ := sc.Get(name)
				env.RawSetString(name, b.ToLuaValue(v))
			}
		}
		return env
	}
	thunk := func(fn *lua.LFunction) loop.Thunk {
		return func(sc *loop.Scope) (any, error) {
			return b.CallFunc(fn, scopeTable(sc))
		}
	}

	var stopErr error
	if stop != nil {
		opts = append(opts, loop.WithStop(func(v any) bool {
			if stopErr != nil {
				return true
			}
			ok, err := b.CallFunc(stop, b.ToLuaValue(v))
			if err != nil {
				stopErr = err
				return true
			}
			return lua.LVAsBool(ok)
		}))
	} else {
		opts = append(opts, loop.WithStop(func(v any) bool {
			return lua.LVAsBool(b.ToLuaValue(v))
		}))
	}

	v, err := loop.RepeatUntil(runContext(L), thunk(initial), thunk(next), opts...)
	if stopErr != nil {
		return raise(L, stopErr)
	}
	if err != nil {
		return raise(L, err)
	}
	L.Push(b.ToLuaValue(v))
	return 1
}

// subset(indices, list) -> {values}
// Selects list[i] for each i in indices, in order. Indices are 1-based.
func (m *MacroModule) subset(L *lua.LState) int {
	indices := L.CheckTable(1)
	list := L.CheckTable(2)
	b := NewBridge(L)

	raw := b.Array(indices)
	idx := make([]int, len(raw))
	for i, v := range raw {
		n, ok := v.(lua.LNumber)
		if !ok || !isInteger(n) {
			L.ArgError(1, "indices must be integers")
			return 0
		}
		idx[i] = int(n) - 1
	}

	picked, err := seq.Subset(idx, b.Array(list))
	if err != nil {
		var ie *macro.IndexError
		if errors.As(err, &ie) {
			err = &macro.IndexError{Index: ie.Index + 1, Len: ie.Len}
		}
		return raise(L, err)
	}
	L.Push(b.ToLuaValue(picked))
	return 1
}

// range(start [, end [, length]]) -> {numbers}
// Inclusive ascending integers from start. end wins over length.
func (m *MacroModule) rangeFn(L *lua.LState) int {
	start := checkInteger(L, 1)

	var opts []seq.RangeOption
	if L.Get(2) != lua.LNil {
		opts = append(opts, seq.To(checkInteger(L, 2)))
	}
	if L.Get(3) != lua.LNil {
		opts = append(opts, seq.Length(checkInteger(L, 3)))
	}

	nums, err := seq.Range(start, opts...)
	if err != nil {
		return raise(L, err)
	}
	L.Push(NewBridge(L).ToLuaValue(nums))
	return 1
}

// checkInteger is L.CheckInt without the silent truncation.
func checkInteger(L *lua.LState, n int) int {
	v := L.CheckNumber(n)
	if !isInteger(v) {
		L.ArgError(n, "integer expected")
		return 0
	}
	return int(v)
}

func isInteger(v lua.LNumber) bool {
	f := float64(v)
	return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}

// describe_key(spec) -> string
// Returns the display form of a key specification, e.g. "<C-g>" -> "C-g".
func (m *MacroModule) describeKey(L *lua.LState) int {
	ev, err := key.Parse(L.CheckString(1))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LString(key.Describe(ev)))
	return 1
}

// is_cancelled(err) -> bool
// Reports whether an error caught with pcall is a menu cancellation.
func (m *MacroModule) isCancelled(L *lua.LState) int {
	goErr := errorValue(L.Get(1))
	L.Push(lua.LBool(goErr != nil && errors.Is(goErr, macro.ErrCancelled)))
	return 1
}

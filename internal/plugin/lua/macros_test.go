package lua

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/keymacro/internal/macro"
	"github.com/dshills/keymacro/internal/macro/loop"
	"github.com/dshills/keymacro/internal/prompt"
)

func newMacroState(t *testing.T, keys string, opts MacroOptions) (*State, *prompt.Script) {
	t.Helper()
	script, err := prompt.ParseScript(keys)
	require.NoError(t, err)

	state, _ := newTestState(t)
	OpenMacros(state, script, opts)
	return state, script
}

func run(t *testing.T, state *State, code string) glua.LValue {
	t.Helper()
	results, err := state.DoString(context.Background(), code)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	return results[0]
}

func format(state *State, v glua.LValue) string {
	return NewBridge(state.LuaState()).Format(v)
}

func TestReadKeyMenu(t *testing.T) {
	state, script := newMacroState(t, "x 1", MacroOptions{})

	got := run(t, state, `
		local km = require("keymacro")
		return km.read_key_menu{
			header = "Pick",
			options = {
				{"zero", function() return "a" end},
				{label = "one", action = function() return "b" end},
			},
		}
	`)

	assert.Equal(t, glua.LString("b"), got)
	prompts := script.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "Pick")
	assert.Contains(t, prompts[0], "0) zero")
	assert.Contains(t, prompts[0], "1) one")
	assert.Contains(t, prompts[0], "C-g) Quit")
}

func TestReadKeyMenuExplicitKeys(t *testing.T) {
	state, _ := newMacroState(t, "y", MacroOptions{})

	got := run(t, state, `
		local km = require("keymacro")
		return km.read_key_menu{
			options = {
				{"no", function() return false end, "n"},
				{"yes", function() return true end, "y"},
			},
		}
	`)
	assert.Equal(t, glua.LTrue, got)
}

func TestReadKeyMenuNilAction(t *testing.T) {
	state, _ := newMacroState(t, "0", MacroOptions{})

	got := run(t, state, `
		return require("keymacro").read_key_menu{options = {{"nothing"}}}
	`)
	assert.Equal(t, glua.LNil, got)
}

func TestReadKeyMenuQuit(t *testing.T) {
	state, _ := newMacroState(t, "C-g", MacroOptions{})
	ran := false
	state.SetGlobal("mark", state.LuaState().NewFunction(func(*glua.LState) int {
		ran = true
		return 0
	}))

	_, err := state.DoString(context.Background(), `
		require("keymacro").read_key_menu{options = {{"a", mark}}}
	`)
	assert.ErrorIs(t, err, macro.ErrCancelled)
	assert.False(t, ran)
}

func TestReadKeyMenuConfiguredQuitKey(t *testing.T) {
	state, script := newMacroState(t, "q", MacroOptions{QuitKey: "q", FirstKey: 'a'})

	_, err := state.DoString(context.Background(), `
		require("keymacro").read_key_menu{options = {{"first"}}}
	`)
	assert.ErrorIs(t, err, macro.ErrCancelled)
	assert.Contains(t, script.Prompts()[0], "a) first")
	assert.Contains(t, script.Prompts()[0], "q) Quit")
}

func TestReadKeyMenuIsCancelled(t *testing.T) {
	state, _ := newMacroState(t, "C-g", MacroOptions{})

	got := run(t, state, `
		local km = require("keymacro")
		local ok, err = pcall(km.read_key_menu, {options = {{"a"}}})
		return not ok and km.is_cancelled(err)
	`)
	assert.Equal(t, glua.LTrue, got)
}

func TestReadKeyMenuConfigError(t *testing.T) {
	state, script := newMacroState(t, "a", MacroOptions{})

	_, err := state.DoString(context.Background(), `
		require("keymacro").read_key_menu{options = {{"a", nil, "x"}, {"b", nil, "x"}}}
	`)
	assert.ErrorIs(t, err, macro.ErrConfiguration)
	assert.Empty(t, script.Prompts())

	_, err = state.DoString(context.Background(), `
		require("keymacro").read_key_menu{options = {}}
	`)
	assert.ErrorIs(t, err, macro.ErrConfiguration)
}

func TestReadKeyMenuActionError(t *testing.T) {
	state, _ := newMacroState(t, "0", MacroOptions{})

	_, err := state.DoString(context.Background(), `
		require("keymacro").read_key_menu{options = {{"a", function() error("inside") end}}}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inside")
}

func TestReadKeyMenuReaderError(t *testing.T) {
	state, _ := newMacroState(t, "", MacroOptions{})

	_, err := state.DoString(context.Background(), `
		require("keymacro").read_key_menu{options = {{"a"}}}
	`)
	assert.ErrorIs(t, err, prompt.ErrScriptExhausted)
}

func TestNestedMenus(t *testing.T) {
	state, _ := newMacroState(t, "1 0", MacroOptions{})

	got := run(t, state, `
		local km = require("keymacro")
		return km.read_key_menu{options = {
			{"leaf", function() return "leaf" end},
			{"sub", function()
				return km.read_key_menu{options = {{"inner", function() return "inner" end}}}
			end},
		}}
	`)
	assert.Equal(t, glua.LString("inner"), got)
}

func TestRepeatUntil(t *testing.T) {
	state, _ := newMacroState(t, "", MacroOptions{})

	got := run(t, state, `
		local km = require("keymacro")
		return km.repeat_until(
			function(env) return env.n end,
			function(env) env.n = env.n + 1; return env.n end,
			function(v) return v >= 5 end,
			{n = 1}
		)
	`)
	assert.Equal(t, glua.LNumber(5), got)
}

func TestRepeatUntilTruthy(t *testing.T) {
	state, _ := newMacroState(t, "", MacroOptions{})

	got := run(t, state, `
		local km = require("keymacro")
		local calls = 0
		return km.repeat_until(
			function() return false end,
			function() calls = calls + 1; if calls == 3 then return "done" end return nil end
		)
	`)
	assert.Equal(t, glua.LString("done"), got)

	// initial already truthy: next never runs
	got = run(t, state, `
		return require("keymacro").repeat_until(
			function() return 0 end,
			function() error("next ran") end
		)
	`)
	assert.Equal(t, glua.LNumber(0), got)
}

func TestRepeatUntilBindingFunction(t *testing.T) {
	state, _ := newMacroState(t, "", MacroOptions{})

	got := run(t, state, `
		local km = require("keymacro")
		return km.repeat_until(
			function(env) return env.start end,
			function(env) return true end,
			nil,
			{start = function() return "computed" end}
		)
	`)
	assert.Equal(t, glua.LString("computed"), got)
}

func TestRepeatUntilWithMenu(t *testing.T) {
	state, script := newMacroState(t, "n n y", MacroOptions{})

	got := run(t, state, `
		local km = require("keymacro")
		return km.repeat_until(
			function(env) return nil end,
			function(env)
				env.tries = env.tries + 1
				return km.read_key_menu{options = {
					{"no", function() return nil end, "n"},
					{"yes", function() return env.tries end, "y"},
				}}
			end,
			nil,
			{tries = 0}
		)
	`)
	assert.Equal(t, glua.LNumber(3), got)
	assert.Len(t, script.Prompts(), 3)
}

func TestRepeatUntilLimit(t *testing.T) {
	state, _ := newMacroState(t, "", MacroOptions{MaxIterations: 10})

	_, err := state.DoString(context.Background(), `
		require("keymacro").repeat_until(function() end, function() end)
	`)
	assert.ErrorIs(t, err, loop.ErrExhausted)

	_, err = state.DoString(context.Background(), `
		require("keymacro").repeat_until(function() end, function() end, nil, nil, 2)
	`)
	assert.ErrorIs(t, err, loop.ErrExhausted)
}

func TestRepeatUntilErrors(t *testing.T) {
	state, _ := newMacroState(t, "", MacroOptions{})

	_, err := state.DoString(context.Background(), `
		require("keymacro").repeat_until(function() return false end, function() error("in next") end)
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in next")

	_, err = state.DoString(context.Background(), `
		require("keymacro").repeat_until(function() return 1 end, function() end, function() error("in stop") end)
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in stop")

	_, err = state.DoString(context.Background(), `
		require("keymacro").repeat_until(function() end, function() end, nil, {[1] = 2})
	`)
	assert.Error(t, err)
}

func TestRepeatUntilCancelled(t *testing.T) {
	state, _ := newMacroState(t, "", MacroOptions{})
	ctx, cancel := context.WithCancel(context.Background())

	state.SetGlobal("stop_host", state.LuaState().NewFunction(func(*glua.LState) int {
		cancel()
		return 0
	}))

	_, err := state.DoString(ctx, `
		require("keymacro").repeat_until(function() end, function() stop_host() end)
	`)
	assert.True(t, errors.Is(err, context.Canceled), "error = %v", err)
}

func TestSubset(t *testing.T) {
	state, _ := newMacroState(t, "", MacroOptions{})

	got := run(t, state, `
		return require("keymacro").subset({3, 1, 3}, {"a", "b", "c"})
	`)
	assert.Equal(t, `{"c", "a", "c"}`, format(state, got))

	got = run(t, state, `return require("keymacro").subset({}, {"a"})`)
	assert.Equal(t, "{}", format(state, got))
}

func TestSubsetOutOfRange(t *testing.T) {
	state, _ := newMacroState(t, "", MacroOptions{})

	_, err := state.DoString(context.Background(), `
		require("keymacro").subset({4}, {"a", "b", "c"})
	`)
	assert.ErrorIs(t, err, macro.ErrIndex)

	var ie *macro.IndexError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 4, ie.Index)
	assert.Equal(t, 3, ie.Len)

	_, err = state.DoString(context.Background(), `
		require("keymacro").subset({0}, {"a"})
	`)
	assert.ErrorIs(t, err, macro.ErrIndex)

	_, err = state.DoString(context.Background(), `
		require("keymacro").subset({1.5}, {"a"})
	`)
	assert.Error(t, err)
}

func TestRange(t *testing.T) {
	state, _ := newMacroState(t, "", MacroOptions{})

	tests := []struct {
		code string
		want string
	}{
		{`return km.range(3, 6)`, "{3, 4, 5, 6}"},
		{`return km.range(3, nil, 3)`, "{3, 4, 5}"},
		{`return km.range(3, 4, 10)`, "{3, 4}"},
		{`return km.range(5, 2)`, "{}"},
		{`return km.range(-1, 1)`, "{-1, 0, 1}"},
	}

	for _, tt := range tests {
		got := run(t, state, `local km = require("keymacro")`+"\n"+tt.code)
		assert.Equal(t, tt.want, format(state, got), tt.code)
	}

	_, err := state.DoString(context.Background(), `require("keymacro").range(1)`)
	assert.ErrorIs(t, err, macro.ErrConfiguration)
}

func TestRangeRejectsFractions(t *testing.T) {
	state, _ := newMacroState(t, "", MacroOptions{})

	for _, code := range []string{
		`require("keymacro").range(1.5, 3)`,
		`require("keymacro").range(1, 2.5)`,
		`require("keymacro").range(1, nil, 0.5)`,
	} {
		_, err := state.DoString(context.Background(), code)
		if assert.Error(t, err, code) {
			assert.Contains(t, err.Error(), "integer expected", code)
		}
	}
}

func TestDescribeKey(t *testing.T) {
	state, _ := newMacroState(t, "", MacroOptions{})

	got := run(t, state, `return require("keymacro").describe_key("<C-g>")`)
	assert.Equal(t, glua.LString("C-g"), got)

	got = run(t, state, `return require("keymacro").describe_key("<Space>")`)
	assert.Equal(t, glua.LString("Space"), got)

	_, err := state.DoString(context.Background(), `require("keymacro").describe_key("")`)
	assert.Error(t, err)
}

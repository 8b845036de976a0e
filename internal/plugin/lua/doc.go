// Package lua runs keymacro scripts in a sandboxed gopher-lua state.
//
// # State
//
// State wraps an LState with only the base, table, string and math
// libraries open and with dofile, load and friends removed:
//
//	state, err := lua.NewState(lua.WithExecutionTimeout(30 * time.Second))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	results, err := state.DoFile(ctx, "macro.lua")
//
// Every run is bound to a context. Cancelling it stops the Lua VM and any
// key read in progress.
//
// # The keymacro module
//
// OpenMacros registers the module scripts load with require("keymacro"):
//
//	local km = require("keymacro")
//	local n = km.read_key_menu{
//	    header = "Repeat",
//	    options = {
//	        {"once", function() return 1 end},
//	        {"twice", function() return 2 end, "t"},
//	    },
//	}
//	return km.range(1, nil, n)
//
// Errors raised by host functions reach the Go caller unchanged, so a
// menu quit surfaces as macro.ErrCancelled from DoFile.
//
// # Bridge
//
// Bridge converts between Lua and Go values and calls Lua functions from Go.
package lua

package lua

import (
	"errors"

	lua "github.com/yuin/gopher-lua"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a run exceeds the state's timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")
)

// hostErrorType names the metatable of host errors raised into Lua.
const hostErrorType = "keymacro.error"

// raise raises err into Lua and does not return normally.
// Errors from nested Lua calls are re-raised with their original value;
// Go errors travel as userdata so the caller of the state gets the
// same error back, matchable with errors.Is.
func raise(L *lua.LState, err error) int {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		L.Error(apiErr.Object, 0)
		return 0
	}
	ud := L.NewUserData()
	ud.Value = err
	L.SetMetatable(ud, L.GetTypeMetatable(hostErrorType))
	L.Error(ud, 0)
	return 0
}

// hostError extracts the Go error carried by a Lua error raised with raise.
func hostError(err error) error {
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		return nil
	}
	return errorValue(apiErr.Object)
}

// errorValue returns the Go error carried by v, if any.
func errorValue(v lua.LValue) error {
	ud, ok := v.(*lua.LUserData)
	if !ok {
		return nil
	}
	goErr, _ := ud.Value.(error)
	return goErr
}

func installErrorType(L *lua.LState) {
	mt := L.NewTypeMetatable(hostErrorType)
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		if goErr := errorValue(L.Get(1)); goErr != nil {
			L.Push(lua.LString(goErr.Error()))
			return 1
		}
		L.Push(lua.LString(hostErrorType))
		return 1
	}))
}

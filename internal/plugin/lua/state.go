package lua

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// State wraps gopher-lua with the sandbox and per-run cancellation.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes Go callers;
// host functions invoked from Lua run on the caller's goroutine and must use
// the LState they are handed rather than State methods.
type State struct {
	L *lua.LState

	mu sync.Mutex

	// timeout bounds each run; zero means no limit.
	timeout time.Duration

	sandbox *Sandbox
	logger  *zap.Logger
	out     io.Writer

	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout bounds every DoString, DoFile and Call.
// Lua code is interrupted between VM instructions; a host function
// blocked on input is interrupted through its context.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithOutput sets where print writes. Defaults to stdout.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		s.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) StateOption {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) (*State, error) {
	state := &State{
		logger: zap.NewNop(),
		out:    os.Stdout,
	}

	for _, opt := range opts {
		opt(state)
	}

	if state.timeout < 0 {
		return nil, fmt.Errorf("negative execution timeout %s", state.timeout)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // We'll open selectively
	})

	state.L = L

	openSafeLibraries(L)
	installErrorType(L)

	state.sandbox = NewSandbox(L, state.out)
	state.sandbox.Install()

	return state, nil
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	// package is needed for require and preloaded host modules.
	lua.OpenPackage(L)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Not opened: io, os, debug, channel, coroutine.
}

// DoFile executes a Lua file and returns the values it returns.
func (s *State) DoFile(ctx context.Context, path string) ([]lua.LValue, error) {
	return s.run(ctx, func() (*lua.LFunction, error) {
		return s.L.LoadFile(path)
	})
}

// DoString executes a Lua chunk and returns the values it returns.
func (s *State) DoString(ctx context.Context, code string) ([]lua.LValue, error) {
	return s.run(ctx, func() (*lua.LFunction, error) {
		return s.L.LoadString(code)
	})
}

// Call calls a global Lua function with the given arguments.
// Returns an empty slice (not nil) if the function returns no values.
func (s *State) Call(ctx context.Context, fn string, args ...lua.LValue) ([]lua.LValue, error) {
	return s.run(ctx, func() (*lua.LFunction, error) {
		fnVal := s.L.GetGlobal(fn)
		if fnVal == lua.LNil {
			return nil, fmt.Errorf("function %q not found", fn)
		}
		f, ok := fnVal.(*lua.LFunction)
		if !ok {
			return nil, fmt.Errorf("%q is not a function (got %s)", fn, fnVal.Type())
		}
		return f, nil
	}, args...)
}

// run loads a function and calls it under ctx, collecting its results.
func (s *State) run(ctx context.Context, load func() (*lua.LFunction, error), args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fn, err := load()
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	// Record stack top before pushing anything
	stackTop := s.L.GetTop()

	s.L.Push(fn)
	for _, arg := range args {
		s.L.Push(arg)
	}

	if err := s.pcall(len(args)); err != nil {
		s.L.SetTop(stackTop)
		err = s.translate(ctx, err)
		s.logger.Debug("lua run failed", zap.Error(err))
		return nil, err
	}

	// Collect return values (only the new values added after the call)
	nRet := s.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.Pop(nRet)

	return results, nil
}

// pcall runs a protected call with panic recovery.
func (s *State) pcall(nargs int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return s.L.PCall(nargs, lua.MultRet, nil)
}

// translate maps a Lua error back to the Go error that caused it:
// a host error raised by a keymacro function, the context error when the
// run was cancelled, or the Lua error itself.
func (s *State) translate(ctx context.Context, err error) error {
	if goErr := hostError(err); goErr != nil {
		return goErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if s.timeout > 0 && errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %w", ErrExecutionTimeout, s.timeout, ctxErr)
		}
		return ctxErr
	}
	return err
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}

	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.L.SetGlobal(name, value)
}

// PreloadModule registers a host module that scripts load with require(name).
func (s *State) PreloadModule(name string, loader lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.L.PreloadModule(name, loader)
	s.sandbox.AllowModule(name)
}

// LuaState returns the underlying gopher-lua state.
//
// Direct access bypasses the mutex. The caller is responsible for
// thread-safety.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// Sandbox returns the sandbox.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases all resources associated with the Lua state.
// After Close is called, all other methods will return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.L.Close()
	s.closed = true
	return nil
}

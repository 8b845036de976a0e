// Package loop evaluates repeat-until loops over a local binding scope.
//
// RepeatUntil evaluates an initial thunk, then a next thunk as many times as
// needed, until a stop predicate accepts a value (or, without a predicate,
// until a value is truthy). Both thunks receive the same Scope, which holds
// the bindings established once at the start of the call; next can read and
// update them to carry state such as an attempt counter between iterations.
package loop

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/keymacro/internal/macro"
)

// ErrExhausted is returned when the iteration limit is reached before the
// loop terminates.
var ErrExhausted = errors.New("repeat-until iteration limit reached")

// Thunk is one evaluation step. It may read and update the scope.
type Thunk func(s *Scope) (any, error)

// Binding is a named initial value, evaluated once per call.
type Binding struct {
	Name string
	init func(s *Scope) (any, error)
}

// Bind binds name to a constant initial value.
func Bind(name string, value any) Binding {
	return Binding{Name: name, init: func(*Scope) (any, error) { return value, nil }}
}

// BindFunc binds name to the result of fn. fn sees the bindings made
// before it in the same list.
func BindFunc(name string, fn func(s *Scope) (any, error)) Binding {
	return Binding{Name: name, init: fn}
}

// Option configures a RepeatUntil call.
type Option func(*config)

type config struct {
	stop          func(any) bool
	bindings      []Binding
	maxIterations int
	logger        *zap.Logger
}

// WithStop sets the termination predicate. Without one, the loop ends on
// the first truthy value.
func WithStop(stop func(v any) bool) Option {
	return func(c *config) {
		c.stop = stop
	}
}

// WithBindings sets the bindings visible to the initial and next thunks.
func WithBindings(bindings ...Binding) Option {
	return func(c *config) {
		c.bindings = append(c.bindings, bindings...)
	}
}

// WithMaxIterations bounds the number of next evaluations.
// Zero (the default) means unbounded.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		c.maxIterations = n
	}
}

// WithLogger sets the logger used for iteration tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// RepeatUntil evaluates initial, then next repeatedly, and returns the first
// value that terminates the loop.
//
// With a stop predicate the loop ends when stop accepts a value; the value
// of initial is checked too. Without one it ends on the first truthy value
// (anything but nil and false). Errors from thunks and from bindings are
// returned unchanged and end the loop; ctx is checked before every step.
func RepeatUntil(ctx context.Context, initial, next Thunk, opts ...Option) (any, error) {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if initial == nil || next == nil {
		return nil, macro.Configf("repeat-until", "initial and next are required")
	}
	if cfg.maxIterations < 0 {
		return nil, macro.Configf("repeat-until", "negative iteration limit %d", cfg.maxIterations)
	}

	done := cfg.stop
	if done == nil {
		done = macro.Truthy
	}

	scope := newScope()
	for _, b := range cfg.bindings {
		if b.Name == "" {
			return nil, macro.Configf("repeat-until", "binding with empty name")
		}
		v, err := b.init(scope)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", b.Name, err)
		}
		scope.Set(b.Name, v)
	}

	log := cfg.logger.With(zap.String("loop", uuid.NewString()))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := initial(scope)
	if err != nil {
		return nil, err
	}

	for n := 0; !done(v); n++ {
		if cfg.maxIterations > 0 && n >= cfg.maxIterations {
			return nil, fmt.Errorf("%w after %d iterations", ErrExhausted, n)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Debug("repeat-until iteration", zap.Int("n", n+1))
		if v, err = next(scope); err != nil {
			return nil, err
		}
	}
	return v, nil
}

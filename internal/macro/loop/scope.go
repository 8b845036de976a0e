package loop

import "fmt"

// Scope holds the bindings of one RepeatUntil call.
// It is discarded when the call returns.
type Scope struct {
	order  []string
	values map[string]any
}

func newScope() *Scope {
	return &Scope{values: make(map[string]any)}
}

// Get returns the value bound to name.
func (s *Scope) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Set binds name to v, replacing any previous value.
func (s *Scope) Set(name string, v any) {
	if _, ok := s.values[name]; !ok {
		s.order = append(s.order, name)
	}
	s.values[name] = v
}

// Int returns the value bound to name as an int.
// Missing names and non-integer values yield an error.
func (s *Scope) Int(name string) (int, error) {
	v, ok := s.values[name]
	if !ok {
		return 0, fmt.Errorf("%s is not bound", name)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("%s is %T, not an integer", name, v)
}

// Incr adds delta to the integer bound to name and returns the new value.
func (s *Scope) Incr(name string, delta int) (int, error) {
	n, err := s.Int(name)
	if err != nil {
		return 0, err
	}
	n += delta
	s.values[name] = n
	return n, nil
}

// Names returns the bound names in the order they were first bound.
func (s *Scope) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

package macro

import (
	"errors"
	"fmt"
)

// Error categories.
var (
	// ErrConfiguration indicates malformed caller input.
	ErrConfiguration = errors.New("configuration error")

	// ErrIndex indicates an index outside the bounds of a sequence.
	ErrIndex = errors.New("index out of range")

	// ErrCancelled indicates the user pressed the quit chord.
	ErrCancelled = errors.New("cancelled by user")
)

// ConfigError describes malformed input to a macro helper.
type ConfigError struct {
	Op     string // Helper that rejected the input (e.g., "menu", "range")
	Reason string
}

// Configf creates a ConfigError with a formatted reason.
func Configf(op, format string, args ...any) *ConfigError {
	return &ConfigError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	if e.Op == "" {
		return fmt.Sprintf("%v: %s", ErrConfiguration, e.Reason)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrConfiguration, e.Reason)
}

// Is reports ErrConfiguration as the error category.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// IndexError reports an index outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%v: index %d, length %d", ErrIndex, e.Index, e.Len)
}

// Is reports ErrIndex as the error category.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndex
}

// Truthy reports whether v counts as a non-false result.
// Only nil and false are false; zero, the empty string and empty
// collections are all true.
func Truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	default:
		return true
	}
}

package prompt

import (
	"context"
	"errors"

	"github.com/dshills/keymacro/internal/input/key"
)

// Reader reads a single key-chord while displaying promptText.
type Reader interface {
	ReadKeyChord(ctx context.Context, promptText string) (key.Event, error)
}

// Reader errors.
var (
	// ErrScriptExhausted is returned by Script when no chords remain.
	ErrScriptExhausted = errors.New("no scripted keys left")

	// ErrScreenClosed is returned when the screen is finalized while reading.
	ErrScreenClosed = errors.New("screen closed")
)

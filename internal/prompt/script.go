package prompt

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/edwingeng/deque"

	"github.com/dshills/keymacro/internal/input/key"
)

// Script is a Reader that replays queued key-chords in order.
// Every prompt passed to ReadKeyChord is recorded.
type Script struct {
	mu      sync.Mutex
	queue   deque.Deque
	prompts []string
}

// NewScript creates a script that will return chords in order.
func NewScript(chords ...key.Event) *Script {
	s := &Script{queue: deque.NewDeque()}
	for _, ev := range chords {
		s.queue.PushBack(ev)
	}
	return s
}

// ParseScript creates a script from whitespace-separated key
// specifications, e.g. "x 2 C-g".
func ParseScript(specs string) (*Script, error) {
	s := NewScript()
	for _, spec := range strings.Fields(specs) {
		ev, err := key.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("scripted key %q: %w", spec, err)
		}
		s.Push(ev)
	}
	return s, nil
}

// Push appends a chord to the end of the script.
func (s *Script) Push(ev key.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.PushBack(ev)
}

// Remaining returns the number of chords not yet read.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Prompts returns a copy of every prompt shown so far.
func (s *Script) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

// ReadKeyChord records promptText and returns the next scripted chord.
func (s *Script) ReadKeyChord(ctx context.Context, promptText string) (key.Event, error) {
	if err := ctx.Err(); err != nil {
		return key.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, promptText)
	if s.queue.Empty() {
		return key.Event{}, ErrScriptExhausted
	}
	ev := s.queue.Front().(key.Event)
	s.queue.PopFront()
	return ev, nil
}

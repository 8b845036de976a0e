package prompt

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/keymacro/internal/input/key"
)

// Screen reads key-chords from a tcell screen.
// The prompt is redrawn from the top-left corner on every read and
// after every resize.
type Screen struct {
	screen tcell.Screen
	style  tcell.Style

	mu          sync.Mutex
	initialized bool
}

// NewScreen creates a reader on the controlling terminal.
func NewScreen() (*Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewScreenWith(screen), nil
}

// NewScreenWith wraps an existing screen, such as a simulation screen.
// The screen is initialized on first use unless Init was already called.
func NewScreenWith(screen tcell.Screen) *Screen {
	return &Screen{
		screen: screen,
		style:  tcell.StyleDefault,
	}
}

// Init initializes the underlying screen. Calling it more than once is a no-op.
func (s *Screen) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := s.screen.Init(); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// Close restores the terminal.
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		s.screen.Fini()
		s.initialized = false
	}
}

// ReadKeyChord draws promptText and blocks until a key event arrives or
// ctx is done. Mouse, paste and focus events are ignored.
func (s *Screen) ReadKeyChord(ctx context.Context, promptText string) (key.Event, error) {
	if err := ctx.Err(); err != nil {
		return key.Event{}, err
	}
	if err := s.Init(); err != nil {
		return key.Event{}, err
	}

	stop := context.AfterFunc(ctx, func() {
		_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil)) // best-effort wake-up
	})
	defer stop()

	s.draw(promptText)
	for {
		switch ev := s.screen.PollEvent().(type) {
		case nil:
			return key.Event{}, ErrScreenClosed
		case *tcell.EventInterrupt:
			if err := ctx.Err(); err != nil {
				return key.Event{}, err
			}
		case *tcell.EventResize:
			s.screen.Sync()
			s.draw(promptText)
		case *tcell.EventKey:
			if chord, ok := convertKey(ev); ok {
				return chord, nil
			}
		}
	}
}

// draw clears the screen and writes the prompt lines.
func (s *Screen) draw(promptText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.screen.Clear()
	width, height := s.screen.Size()

	lines := strings.Split(promptText, "\n")
	cx, cy := 0, 0
	for y, line := range lines {
		if y >= height {
			break
		}
		x := 0
		for _, r := range line {
			w := runewidth.RuneWidth(r)
			if w == 0 {
				continue
			}
			if x+w > width {
				break
			}
			s.screen.SetContent(x, y, r, nil, s.style)
			x += w
		}
		cx, cy = x, y
	}
	s.screen.ShowCursor(cx, cy)
	s.screen.Show()
}

// convertKey converts a tcell key event into a chord.
// Returns false for keys with no chord equivalent.
func convertKey(ev *tcell.EventKey) (key.Event, bool) {
	mods := convertMod(ev.Modifiers())
	k := ev.Key()

	switch k {
	case tcell.KeyRune:
		r := ev.Rune()
		if mods.Has(key.ModCtrl) {
			r = unicode.ToLower(r)
		}
		return key.Event{Key: key.KeyRune, Rune: r, Modifiers: mods, Timestamp: ev.When()}, true
	case tcell.KeyBacktab:
		return key.Event{Key: key.KeyTab, Modifiers: mods.With(key.ModShift), Timestamp: ev.When()}, true
	case tcell.KeyCtrlSpace:
		return key.Event{Key: key.KeyRune, Rune: ' ', Modifiers: mods.With(key.ModCtrl), Timestamp: ev.When()}, true
	}

	if special, ok := specialKeys[k]; ok {
		return key.Event{Key: special, Modifiers: mods, Timestamp: ev.When()}, true
	}

	if k >= tcell.KeyF1 && k <= tcell.KeyF12 {
		return key.Event{Key: key.KeyF1 + key.Key(k-tcell.KeyF1), Modifiers: mods, Timestamp: ev.When()}, true
	}

	// Control characters that are not Tab, Enter, Backspace or Escape.
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		r := 'a' + rune(k-tcell.KeyCtrlA)
		return key.Event{Key: key.KeyRune, Rune: r, Modifiers: mods.With(key.ModCtrl), Timestamp: ev.When()}, true
	}

	return key.Event{}, false
}

// specialKeys maps tcell keys to special keys. Tab, Enter and Backspace
// share codes with Ctrl-I, Ctrl-M and Ctrl-H and are matched here first.
var specialKeys = map[tcell.Key]key.Key{
	tcell.KeyEscape:     key.KeyEscape,
	tcell.KeyEnter:      key.KeyEnter,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBackspace:  key.KeyBackspace,
	tcell.KeyBackspace2: key.KeyBackspace,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyInsert:     key.KeyInsert,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
}

// convertMod converts a tcell modifier mask.
func convertMod(m tcell.ModMask) key.Modifier {
	var result key.Modifier
	if m&tcell.ModShift != 0 {
		result = result.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		result = result.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		result = result.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		result = result.With(key.ModMeta)
	}
	return result
}

package prompt

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/dshills/keymacro/internal/input/key"
)

// Line reads key-chords from a plain terminal.
// The prompt is printed as-is; when the input is a terminal it is put in
// raw mode for the duration of a single read so one key press is enough.
// Bytes for more than one key arriving in a single read are kept for the
// following calls. Input that decodes to no key is skipped.
type Line struct {
	in       io.Reader
	out      io.Writer
	keyColor *color.Color
	pending  []byte
}

// fdReader is implemented by *os.File.
type fdReader interface {
	Fd() uintptr
}

// NewLine creates a line reader. When useColor is set, the key column of
// each "<key>) <label>" line is highlighted.
func NewLine(in io.Reader, out io.Writer, useColor bool) *Line {
	c := color.New(color.FgCyan, color.Bold)
	if useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return &Line{in: in, out: out, keyColor: c}
}

// ReadKeyChord prints promptText and reads one key.
// The read itself cannot be interrupted; ctx is checked before each read.
func (l *Line) ReadKeyChord(ctx context.Context, promptText string) (key.Event, error) {
	if err := ctx.Err(); err != nil {
		return key.Event{}, err
	}

	if _, err := fmt.Fprint(l.out, l.highlight(promptText)+" "); err != nil {
		return key.Event{}, err
	}

	for {
		if len(l.pending) == 0 {
			if err := ctx.Err(); err != nil {
				return key.Event{}, err
			}
			if err := l.fill(); err != nil {
				return key.Event{}, err
			}
			continue
		}

		ev, ok := DecodeBytes(l.next())
		if !ok {
			continue
		}
		fmt.Fprint(l.out, "\r\n")
		ev.Timestamp = time.Now()
		return ev, nil
	}
}

// fill reads once from the input into pending.
func (l *Line) fill() error {
	if f, ok := l.in.(fdReader); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("entering raw mode: %w", err)
		}
		defer func() { _ = term.Restore(fd, state) }()
	}

	buf := make([]byte, 64)
	n, err := l.in.Read(buf)
	if n == 0 {
		if err == nil {
			err = io.ErrNoProgress
		}
		return err
	}
	l.pending = append(l.pending, buf[:n]...)
	return nil
}

// next removes the bytes of one key press from pending.
// An escape sequence runs to the end of the read it arrived in.
func (l *Line) next() []byte {
	b := l.pending
	size := 1
	switch {
	case b[0] == 0x1b:
		size = len(b)
	case b[0] >= utf8.RuneSelf:
		_, size = utf8.DecodeRune(b)
	}
	l.pending = b[size:]
	return b[:size]
}

// highlight colors the key column of menu lines.
func (l *Line) highlight(promptText string) string {
	lines := strings.Split(promptText, "\n")
	for i, line := range lines {
		idx := strings.Index(line, ") ")
		if idx <= 0 || strings.ContainsAny(strings.TrimRight(line[:idx], " "), " \t") {
			continue
		}
		lines[i] = l.keyColor.Sprint(line[:idx]) + line[idx:]
	}
	return strings.Join(lines, "\n")
}

// escapeSequences maps terminal escape sequences (after ESC) to chords.
var escapeSequences = map[string]key.Event{
	"[A":   {Key: key.KeyUp},
	"[B":   {Key: key.KeyDown},
	"[C":   {Key: key.KeyRight},
	"[D":   {Key: key.KeyLeft},
	"[H":   {Key: key.KeyHome},
	"[F":   {Key: key.KeyEnd},
	"OH":   {Key: key.KeyHome},
	"OF":   {Key: key.KeyEnd},
	"[Z":   {Key: key.KeyTab, Modifiers: key.ModShift},
	"[2~":  {Key: key.KeyInsert},
	"[3~":  {Key: key.KeyDelete},
	"[5~":  {Key: key.KeyPageUp},
	"[6~":  {Key: key.KeyPageDown},
	"OP":   {Key: key.KeyF1},
	"OQ":   {Key: key.KeyF2},
	"OR":   {Key: key.KeyF3},
	"OS":   {Key: key.KeyF4},
	"[15~": {Key: key.KeyF5},
	"[17~": {Key: key.KeyF6},
	"[18~": {Key: key.KeyF7},
	"[19~": {Key: key.KeyF8},
	"[20~": {Key: key.KeyF9},
	"[21~": {Key: key.KeyF10},
	"[23~": {Key: key.KeyF11},
	"[24~": {Key: key.KeyF12},
}

// DecodeBytes decodes the bytes of one key press as read from a raw-mode
// terminal. A lone ESC is Escape; ESC followed by a character is that
// character with Alt.
func DecodeBytes(b []byte) (key.Event, bool) {
	if len(b) == 0 {
		return key.Event{}, false
	}

	if b[0] == 0x1b {
		if len(b) == 1 {
			return key.Event{Key: key.KeyEscape}, true
		}
		if ev, ok := escapeSequences[string(b[1:])]; ok {
			return ev, true
		}
		rest := b[1:]
		if _, size := utf8.DecodeRune(rest); size != len(rest) {
			return key.Event{}, false
		}
		ev, ok := DecodeBytes(rest)
		if !ok || ev.Key != key.KeyRune {
			return key.Event{}, false
		}
		ev.Modifiers = ev.Modifiers.With(key.ModAlt)
		return ev, true
	}

	switch c := b[0]; {
	case c == '\r' || c == '\n':
		return key.Event{Key: key.KeyEnter}, true
	case c == '\t':
		return key.Event{Key: key.KeyTab}, true
	case c == 0x7f || c == 0x08:
		return key.Event{Key: key.KeyBackspace}, true
	case c == 0:
		return key.Event{Key: key.KeyRune, Rune: ' ', Modifiers: key.ModCtrl}, true
	case c <= 0x1a:
		return key.Event{Key: key.KeyRune, Rune: rune('a' + c - 1), Modifiers: key.ModCtrl}, true
	case c < 0x20:
		return key.Event{}, false
	}

	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		return key.Event{}, false
	}
	return key.Event{Key: key.KeyRune, Rune: r}, true
}

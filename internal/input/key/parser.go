package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@", "-", "+"
//   - Special keys: "Enter", "Escape", "Tab", "Backspace", "Space", "F5"
//   - With modifiers: "Ctrl+G", "Alt+F4", "Ctrl+Shift+P"
//   - Emacs style: "C-g", "M-x", "C-M-a"
//   - Vim style: "<C-g>", "<Esc>", "<CR>", "<Space>"
//
// Parsed events carry a zero Timestamp.
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if utf8.RuneCountInString(spec) == 1 {
		return parseKey(spec, ModNone)
	}

	if strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseChord(spec[1:len(spec)-1], "-")
	}

	if strings.Contains(spec, "+") {
		return parseChord(spec, "+")
	}

	if strings.Contains(spec, "-") {
		return parseChord(spec, "-")
	}

	return parseKey(spec, ModNone)
}

// parseChord parses "<mods><sep><key>". A trailing separator names the
// separator character itself, so "C--" is Ctrl with the '-' key.
func parseChord(inner, sep string) (Event, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return Event{}, fmt.Errorf("%w: empty chord", ErrInvalidSpec)
	}

	var keyPart string
	var modPart string
	if strings.HasSuffix(inner, sep+sep) {
		keyPart = sep
		modPart = strings.TrimSuffix(inner, sep+sep)
	} else if idx := strings.LastIndex(inner, sep); idx >= 0 {
		keyPart = inner[idx+len(sep):]
		modPart = inner[:idx]
	} else {
		keyPart = inner
	}

	var mods Modifier
	if modPart != "" {
		for _, p := range strings.Split(modPart, sep) {
			mod := ModifierFromName(p)
			if mod == ModNone {
				return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
			}
			mods = mods.With(mod)
		}
	}

	return parseKey(keyPart, mods)
}

// parseKey parses a key name or single character with already-known modifiers.
func parseKey(keyPart string, mods Modifier) (Event, error) {
	keyPart = strings.TrimSpace(keyPart)
	if keyPart == "" {
		return Event{}, fmt.Errorf("%w: missing key", ErrInvalidSpec)
	}

	if utf8.RuneCountInString(keyPart) == 1 {
		r, _ := utf8.DecodeRuneInString(keyPart)
		switch {
		case mods.Has(ModCtrl):
			r = unicode.ToLower(r)
		case unicode.IsUpper(r):
			mods = mods.With(ModShift)
		case mods.Has(ModShift):
			// "S-a" is the key a terminal reports as 'A'.
			r = unicode.ToUpper(r)
		}
		return Event{Key: KeyRune, Rune: r, Modifiers: mods}, nil
	}

	switch strings.ToLower(keyPart) {
	case "space", "spc":
		return Event{Key: KeyRune, Rune: ' ', Modifiers: mods}, nil
	case "lt":
		return Event{Key: KeyRune, Rune: '<', Modifiers: mods}, nil
	case "gt":
		return Event{Key: KeyRune, Rune: '>', Modifiers: mods}, nil
	case "bar":
		return Event{Key: KeyRune, Rune: '|', Modifiers: mods}, nil
	case "bslash":
		return Event{Key: KeyRune, Rune: '\\', Modifiers: mods}, nil
	case "minus":
		return Event{Key: KeyRune, Rune: '-', Modifiers: mods}, nil
	}

	if k := KeyFromName(keyPart); k != KeyNone {
		return Event{Key: k, Modifiers: mods}, nil
	}

	return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}

// NormalizeSpec parses and re-formats a key specification to its canonical form.
func NormalizeSpec(spec string) (string, error) {
	event, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return Describe(event), nil
}

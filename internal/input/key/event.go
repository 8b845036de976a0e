package key

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Event is a single key-chord: one key press together with its modifiers.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the event occurred. Zero for parsed specifications.
	Timestamp time.Time
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{
		Key:       key,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsModified returns true if any modifier is pressed.
// For character events Shift alone does not count, since Shift
// changes the character itself.
func (e Event) IsModified() bool {
	return e.significantModifiers() != ModNone
}

func (e Event) significantModifiers() Modifier {
	if e.IsRune() {
		return e.Modifiers.Without(ModShift)
	}
	return e.Modifiers
}

// Equals returns true if two events represent the same key-chord.
// Timestamps are not compared, and Shift is ignored on character keys.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key &&
		e.Rune == other.Rune &&
		e.significantModifiers() == other.significantModifiers()
}

// Matches checks if this event matches a key specification string.
func (e Event) Matches(spec string) bool {
	parsed, err := Parse(spec)
	if err != nil {
		return false
	}
	return e.Equals(parsed)
}

// String returns the short description, same as Describe.
func (e Event) String() string {
	return Describe(e)
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Key: %s, Rune: %q, Modifiers: %s}",
		e.Key.String(), e.Rune, e.Modifiers.String())
}

// Describe renders a key-chord in the short human-readable form used by
// menu prompts: "a", "A", "Space", "C-g", "M-x", "Esc", "S-Tab".
func Describe(e Event) string {
	var name string
	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		name = "Space"
	case e.Key == KeyRune:
		name = string(e.Rune)
	default:
		name = e.Key.ShortName()
	}

	mods := e.significantModifiers()
	if mods == ModNone {
		return name
	}
	return strings.Join([]string{mods.ShortString(), name}, "-")
}

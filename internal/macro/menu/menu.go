package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/dshills/keymacro/internal/input/key"
	"github.com/dshills/keymacro/internal/macro"
)

// Defaults for key assignment.
const (
	DefaultQuitKey  = "C-g"
	DefaultFirstKey = '0'

	// lastKey is the highest character considered for auto-assignment.
	lastKey = '~'
)

// Thunk is a deferred action, evaluated only when its item is chosen.
type Thunk func() (any, error)

// Item is one menu entry.
type Item struct {
	// Label is shown after the key in the prompt.
	Label string

	// Action runs when the item is chosen. A nil action yields nil.
	Action Thunk

	// Key is an explicit key specification (see key.Parse).
	// Empty means the key is auto-assigned.
	Key string
}

// Reader reads a single key-chord while displaying a prompt.
type Reader interface {
	ReadKeyChord(ctx context.Context, prompt string) (key.Event, error)
}

// Menu is a validated menu with its keys assigned and prompt rendered.
// A Menu holds no state between runs and may be run more than once.
type Menu struct {
	items    []Item
	keys     []key.Event
	index    map[string]int
	quit     key.Event
	quitSpec string
	firstKey rune
	header   string
	footer   string
	prompt   string
	logger   *zap.Logger
}

// Option configures a Menu.
type Option func(*Menu)

// WithHeader sets text shown above the items, followed by a blank line.
func WithHeader(header string) Option {
	return func(m *Menu) {
		m.header = header
	}
}

// WithFooter sets text shown below the quit line.
func WithFooter(footer string) Option {
	return func(m *Menu) {
		m.footer = footer
	}
}

// WithQuitKey sets the key specification of the cancel chord.
func WithQuitKey(spec string) Option {
	return func(m *Menu) {
		m.quitSpec = spec
	}
}

// WithFirstKey sets the character auto-assignment starts from.
func WithFirstKey(r rune) Option {
	return func(m *Menu) {
		m.firstKey = r
	}
}

// WithLogger sets the logger used for prompt and selection events.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Menu) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New validates the items, assigns their keys and renders the prompt.
// All configuration errors are reported here, before anything is shown.
func New(items []Item, opts ...Option) (*Menu, error) {
	m := &Menu{
		quitSpec: DefaultQuitKey,
		firstKey: DefaultFirstKey,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if len(items) == 0 {
		return nil, macro.Configf("menu", "no items")
	}
	if m.firstKey <= ' ' || m.firstKey > lastKey {
		return nil, macro.Configf("menu", "first key %q is not a printable ASCII character", m.firstKey)
	}

	quit, err := key.Parse(m.quitSpec)
	if err != nil {
		return nil, macro.Configf("menu", "quit key: %v", err)
	}
	m.quit = quit

	m.items = make([]Item, len(items))
	copy(m.items, items)

	if err := m.assignKeys(); err != nil {
		return nil, err
	}
	m.prompt = m.render()
	return m, nil
}

// assignKeys reserves every explicit key, then hands out free characters
// to the remaining items in item order.
func (m *Menu) assignKeys() error {
	m.keys = make([]key.Event, len(m.items))
	m.index = make(map[string]int, len(m.items))
	m.index[key.Describe(m.quit)] = -1

	explicit := make([]bool, len(m.items))
	for i, item := range m.items {
		if item.Key == "" {
			continue
		}
		ev, err := key.Parse(item.Key)
		if err != nil {
			return macro.Configf("menu", "item %d (%q): %v", i, item.Label, err)
		}
		id := key.Describe(ev)
		if prev, taken := m.index[id]; taken {
			if prev < 0 {
				return macro.Configf("menu", "item %d (%q): key %s is the quit key", i, item.Label, id)
			}
			return macro.Configf("menu", "item %d (%q): key %s already used by item %d", i, item.Label, id, prev)
		}
		m.keys[i] = ev
		m.index[id] = i
		explicit[i] = true
	}

	next := m.firstKey
	for i := range m.items {
		if explicit[i] {
			continue
		}
		for {
			if next > lastKey {
				return macro.Configf("menu", "no free key left for item %d (%q)", i, m.items[i].Label)
			}
			ev := key.Event{Key: key.KeyRune, Rune: next}
			next++
			id := key.Describe(ev)
			if _, taken := m.index[id]; taken {
				continue
			}
			m.keys[i] = ev
			m.index[id] = i
			break
		}
	}
	return nil
}

// render lays out the prompt text.
func (m *Menu) render() string {
	descs := make([]string, len(m.keys))
	width := 0
	for i, k := range m.keys {
		descs[i] = key.Describe(k)
		if w := runewidth.StringWidth(descs[i]); w > width {
			width = w
		}
	}

	var b strings.Builder
	if m.header != "" {
		b.WriteString(m.header)
		b.WriteString("\n\n")
	}
	for i, item := range m.items {
		fmt.Fprintf(&b, "%s) %s\n", runewidth.FillRight(descs[i], width), item.Label)
	}
	fmt.Fprintf(&b, "%s) Quit", runewidth.FillRight(key.Describe(m.quit), width))
	if m.footer != "" {
		b.WriteString("\n")
		b.WriteString(m.footer)
	}
	return b.String()
}

// Prompt returns the rendered prompt text.
func (m *Menu) Prompt() string {
	return m.prompt
}

// Keys returns the assigned key of each item, in item order.
func (m *Menu) Keys() []key.Event {
	out := make([]key.Event, len(m.keys))
	copy(out, m.keys)
	return out
}

// QuitKey returns the cancel chord.
func (m *Menu) QuitKey() key.Event {
	return m.quit
}

// Len returns the number of items.
func (m *Menu) Len() int {
	return len(m.items)
}

// Run prompts until the user picks an item or quits, then returns the
// chosen item's action result. Quitting returns macro.ErrCancelled without
// running any action. Reader errors are returned unchanged.
func (m *Menu) Run(ctx context.Context, r Reader) (any, error) {
	log := m.logger.With(zap.String("menu", uuid.NewString()))
	log.Debug("menu prompt", zap.Int("items", len(m.items)))

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev, err := r.ReadKeyChord(ctx, m.prompt)
		if err != nil {
			return nil, err
		}

		id := key.Describe(ev)
		i, ok := m.index[id]
		switch {
		case !ok:
			log.Debug("menu key ignored", zap.String("key", id))
			continue
		case i < 0:
			log.Debug("menu cancelled")
			return nil, macro.ErrCancelled
		}

		log.Debug("menu item chosen", zap.String("key", id), zap.String("label", m.items[i].Label))
		if m.items[i].Action == nil {
			return nil, nil
		}
		return m.items[i].Action()
	}
}

// Read builds a menu from items and runs it once.
func Read(ctx context.Context, r Reader, items []Item, opts ...Option) (any, error) {
	m, err := New(items, opts...)
	if err != nil {
		return nil, err
	}
	return m.Run(ctx, r)
}

// FromLists zips parallel label, action and key lists into items.
// Labels and actions must have the same length. Keys may be shorter;
// items past the end of keys are auto-assigned.
func FromLists(labels []string, actions []Thunk, keys []string) ([]Item, error) {
	if len(labels) != len(actions) {
		return nil, macro.Configf("menu", "%d labels but %d actions", len(labels), len(actions))
	}
	if len(keys) > len(labels) {
		return nil, macro.Configf("menu", "%d keys for %d labels", len(keys), len(labels))
	}

	items := make([]Item, len(labels))
	for i, label := range labels {
		items[i] = Item{Label: label, Action: actions[i]}
		if i < len(keys) {
			items[i].Key = keys[i]
		}
	}
	return items, nil
}

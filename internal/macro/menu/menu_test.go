package menu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keymacro/internal/input/key"
	"github.com/dshills/keymacro/internal/macro"
	"github.com/dshills/keymacro/internal/prompt"
)

func value(v any) Thunk {
	return func() (any, error) { return v, nil }
}

func describeAll(keys []key.Event) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = key.Describe(k)
	}
	return out
}

func TestAutoAssignedKeysAreDistinct(t *testing.T) {
	for n := 1; n <= 40; n++ {
		items := make([]Item, n)
		for i := range items {
			items[i] = Item{Label: fmt.Sprintf("item %d", i), Action: value(i)}
		}

		m, err := New(items)
		require.NoError(t, err, "n=%d", n)

		seen := make(map[string]bool)
		for _, d := range describeAll(m.Keys()) {
			assert.False(t, seen[d], "n=%d: key %s assigned twice", n, d)
			assert.NotEqual(t, key.Describe(m.QuitKey()), d)
			seen[d] = true
		}
		assert.Len(t, seen, n)
	}
}

func TestAssignmentStartsAtZero(t *testing.T) {
	m, err := New([]Item{{Label: "a"}, {Label: "b"}, {Label: "c"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, describeAll(m.Keys()))
}

func TestAssignmentSkipsExplicitKeys(t *testing.T) {
	m, err := New([]Item{
		{Label: "first"},
		{Label: "explicit", Key: "1"},
		{Label: "third"},
		{Label: "letter", Key: "s"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2", "s"}, describeAll(m.Keys()))
}

func TestAssignmentSkipsQuitKey(t *testing.T) {
	m, err := New([]Item{{Label: "a"}, {Label: "b"}}, WithQuitKey("1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2"}, describeAll(m.Keys()))
}

func TestAssignmentFirstKey(t *testing.T) {
	m, err := New([]Item{{Label: "a"}, {Label: "b"}}, WithFirstKey('a'))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, describeAll(m.Keys()))
}

func TestAssignmentIsDeterministic(t *testing.T) {
	items := []Item{{Label: "x"}, {Label: "y", Key: "0"}, {Label: "z"}}
	a, err := New(items, WithHeader("h"))
	require.NoError(t, err)
	b, err := New(items, WithHeader("h"))
	require.NoError(t, err)

	assert.Equal(t, a.Prompt(), b.Prompt())
	assert.Equal(t, describeAll(a.Keys()), describeAll(b.Keys()))
}

func TestConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		opts  []Option
	}{
		{"no items", nil, nil},
		{"duplicate explicit keys", []Item{{Label: "a", Key: "x"}, {Label: "b", Key: "x"}}, nil},
		{"duplicate after normalizing", []Item{{Label: "a", Key: "C-x"}, {Label: "b", Key: "Ctrl+X"}}, nil},
		{"explicit quit key", []Item{{Label: "a", Key: "C-g"}}, nil},
		{"bad explicit key", []Item{{Label: "a", Key: "Hyper+q"}}, nil},
		{"bad quit key", []Item{{Label: "a"}}, []Option{WithQuitKey("")}},
		{"bad first key", []Item{{Label: "a"}}, []Option{WithFirstKey('\n')}},
		{"first key beyond ascii", []Item{{Label: "a"}}, []Option{WithFirstKey('é')}},
		{"too many items", make([]Item, 80), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.items, tt.opts...)
			assert.ErrorIs(t, err, macro.ErrConfiguration)
		})
	}
}

func TestDuplicateKeysFailBeforePrompting(t *testing.T) {
	script := prompt.NewScript(key.MustParse("x"))
	_, err := Read(context.Background(), script, []Item{
		{Label: "a", Key: "x"},
		{Label: "b", Key: "x"},
	})

	assert.ErrorIs(t, err, macro.ErrConfiguration)
	assert.Empty(t, script.Prompts())
	assert.Equal(t, 1, script.Remaining())
}

func TestPromptLayout(t *testing.T) {
	m, err := New([]Item{
		{Label: "Save", Key: "s"},
		{Label: "Save as", Key: "C-s"},
		{Label: "Revert"},
	}, WithHeader("Buffer modified"), WithFooter("Choose wisely"))
	require.NoError(t, err)

	want := "Buffer modified\n" +
		"\n" +
		"s  ) Save\n" +
		"C-s) Save as\n" +
		"0  ) Revert\n" +
		"C-g) Quit\n" +
		"Choose wisely"
	assert.Equal(t, want, m.Prompt())
}

func TestPromptLayoutWithoutHeaderOrFooter(t *testing.T) {
	m, err := New([]Item{{Label: "Only"}})
	require.NoError(t, err)
	assert.Equal(t, "0) Only\nC-g) Quit", m.Prompt())
}

func TestPromptLayoutEmptyLabel(t *testing.T) {
	m, err := New([]Item{{Label: ""}})
	require.NoError(t, err)
	assert.Equal(t, "0) \nC-g) Quit", m.Prompt())
}

func TestRunReturnsChosenAction(t *testing.T) {
	calls := map[string]int{}
	action := func(name string) Thunk {
		return func() (any, error) {
			calls[name]++
			return name, nil
		}
	}

	script := prompt.NewScript(key.MustParse("1"))
	got, err := Read(context.Background(), script, []Item{
		{Label: "alpha", Action: action("alpha")},
		{Label: "beta", Action: action("beta")},
	})

	require.NoError(t, err)
	assert.Equal(t, "beta", got)
	assert.Equal(t, map[string]int{"beta": 1}, calls)
}

func TestRunIgnoresUnknownKeys(t *testing.T) {
	script := prompt.NewScript(key.MustParse("z"), key.MustParse("Esc"), key.MustParse("0"))
	m, err := New([]Item{{Label: "only", Action: value(42)}})
	require.NoError(t, err)

	got, err := m.Run(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	prompts := script.Prompts()
	require.Len(t, prompts, 3)
	for _, p := range prompts {
		assert.Equal(t, m.Prompt(), p)
	}
}

func TestRunSkipsUndecodableTerminalInput(t *testing.T) {
	in := io.MultiReader(
		strings.NewReader("\x1b[1;5A"),
		strings.NewReader("\x1c"),
		strings.NewReader("1"),
	)
	m, err := New([]Item{
		{Label: "alpha", Action: value("alpha")},
		{Label: "beta", Action: value("beta")},
	})
	require.NoError(t, err)

	got, err := m.Run(context.Background(), prompt.NewLine(in, &bytes.Buffer{}, false))
	require.NoError(t, err)
	assert.Equal(t, "beta", got)
}

func TestRunQuitRunsNoAction(t *testing.T) {
	ran := false
	script := prompt.NewScript(key.MustParse("C-g"))

	got, err := Read(context.Background(), script, []Item{
		{Label: "boom", Action: func() (any, error) {
			ran = true
			return nil, nil
		}},
	})

	assert.ErrorIs(t, err, macro.ErrCancelled)
	assert.Nil(t, got)
	assert.False(t, ran)
}

func TestRunCustomQuitKey(t *testing.T) {
	script := prompt.NewScript(key.MustParse("C-g"), key.MustParse("q"))
	_, err := Read(context.Background(), script, []Item{{Label: "a"}}, WithQuitKey("q"))
	assert.ErrorIs(t, err, macro.ErrCancelled)
	assert.Len(t, script.Prompts(), 2)
}

func TestRunNilAction(t *testing.T) {
	script := prompt.NewScript(key.MustParse("0"))
	got, err := Read(context.Background(), script, []Item{{Label: "noop"}})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRunPropagatesActionError(t *testing.T) {
	boom := errors.New("boom")
	script := prompt.NewScript(key.MustParse("0"))
	_, err := Read(context.Background(), script, []Item{{
		Label:  "fail",
		Action: func() (any, error) { return nil, boom },
	}})
	assert.ErrorIs(t, err, boom)
}

func TestRunPropagatesReaderError(t *testing.T) {
	script := prompt.NewScript()
	_, err := Read(context.Background(), script, []Item{{Label: "a"}})
	assert.ErrorIs(t, err, prompt.ErrScriptExhausted)
}

func TestRunHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	script := prompt.NewScript(key.MustParse("0"))
	_, err := Read(ctx, script, []Item{{Label: "a"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromLists(t *testing.T) {
	items, err := FromLists(
		[]string{"one", "two", "three"},
		[]Thunk{value(1), value(2), value(3)},
		[]string{"o"},
	)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "o", items[0].Key)
	assert.Empty(t, items[1].Key)

	m, err := New(items)
	require.NoError(t, err)
	assert.Equal(t, []string{"o", "0", "1"}, describeAll(m.Keys()))
}

func TestFromListsMismatch(t *testing.T) {
	_, err := FromLists([]string{"a", "b"}, []Thunk{value(1)}, nil)
	assert.ErrorIs(t, err, macro.ErrConfiguration)

	_, err = FromLists([]string{"a"}, []Thunk{value(1)}, []string{"x", "y"})
	assert.ErrorIs(t, err, macro.ErrConfiguration)
}

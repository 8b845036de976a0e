// Package key provides the key-chord type read by menu prompts.
//
// An Event is one discrete unit of key input: a special key or a rune,
// together with the modifiers held while it was pressed. Events are what
// a prompt reader returns and what a menu binds its options to.
//
// # Key Specifications
//
// Explicit menu keys and the quit chord are written as specifications:
//
//   - Simple keys: "a", "A", "1", "Enter", "Escape"
//   - With modifiers: "Ctrl+G", "Alt+x"
//   - Vim/Emacs style: "C-g", "<C-g>", "<Esc>", "<CR>"
//
// Describe renders an Event back into the short form used in prompts,
// e.g. "a", "C-g" or "Esc".
package key

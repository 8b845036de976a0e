// Package prompt provides the host side of menu prompts: readers that show
// a prompt and return exactly one key-chord.
//
// Three readers are available:
//
//   - Screen draws the prompt on a tcell screen and polls key events.
//   - Line prints the prompt to a plain terminal and reads one key in raw mode.
//   - Script replays a fixed list of chords, recording each prompt shown.
//
// All readers satisfy Reader, which is also the shape menu.Reader expects.
package prompt

// Package menu builds keyed menu prompts.
//
// A menu pairs each item label with an action and a trigger key. Items may
// name their key explicitly; the rest are auto-assigned the next free
// printable character, scanning upward from the first key ('0' by default).
// The rendered prompt lists every item as "<key>) <label>" with the keys
// padded to a common width, followed by the quit line.
//
//	choice, err := menu.Read(ctx, reader, []menu.Item{
//	    {Label: "Save", Action: save, Key: "s"},
//	    {Label: "Discard", Action: discard},
//	}, menu.WithHeader("Buffer modified"))
//	if errors.Is(err, macro.ErrCancelled) {
//	    return nil
//	}
//
// Run reads one key-chord at a time until it matches an item or the quit
// chord. Unknown chords are ignored and the prompt is shown again. The
// chosen action runs exactly once; quitting runs nothing and returns
// macro.ErrCancelled.
package menu

// Package macro holds what the editor macro helpers share: the error
// taxonomy and the truthiness rule used by the looping helpers.
//
// The helpers themselves live in sub-packages:
//
//   - menu: keyed menu prompts (read a single key, run the chosen action)
//   - loop: repeat-until evaluation with a local binding scope
//   - seq: list subsets and integer ranges
//
// Errors fall into three groups. ErrConfiguration covers malformed caller
// input and is always raised before any prompt is shown. ErrIndex covers
// out-of-range positions. ErrCancelled means the user pressed the quit
// chord; it is never a selection and must be checked with errors.Is.
// Errors from the host (terminal I/O, context cancellation) are returned
// unchanged.
package macro

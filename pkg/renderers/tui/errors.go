package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoChoices reports a field with nothing to select, or a search with
	// no matches.
	ErrNoChoices = errors.New("tui: no choices available")
)

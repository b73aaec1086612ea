package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNilSession is returned when Run is called without a session.
	ErrNilSession = errors.New("tui: session is required")
)

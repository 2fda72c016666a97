package exchange

import "errors"

// Boundary failures are fatal for the interaction and propagate to the
// orchestrating caller; there is no retry at this layer.
var (
	// ErrLaunchFailure means the interactive child process exited non-zero
	// or could not be started at all.
	ErrLaunchFailure = errors.New("feedback UI launch failed")

	// ErrMissingResultFile means the child exited zero but the result file
	// does not exist — a protocol violation, never silently tolerated.
	ErrMissingResultFile = errors.New("feedback result file missing")

	// ErrResultReadFailure means the result file exists but could not be
	// read or parsed.
	ErrResultReadFailure = errors.New("feedback result file unreadable")
)

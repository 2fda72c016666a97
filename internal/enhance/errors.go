package enhance

import "errors"

// Failure taxonomy for the enhancement path. All of these are recoverable:
// the UI reports them and keeps the original text.
var (
	// ErrEmptyInput means enhancement was requested with nothing to rewrite.
	ErrEmptyInput = errors.New("enhancement input is empty")

	// ErrServiceUnavailable means the rewrite capability is not configured,
	// typically a missing API key.
	ErrServiceUnavailable = errors.New("rewrite capability unavailable")

	// ErrUpstream means the capability call failed or produced an error chunk.
	ErrUpstream = errors.New("rewrite capability failed")

	// ErrEmptyResponse means the stream completed with zero usable chunks.
	ErrEmptyResponse = errors.New("rewrite capability returned nothing")

	// ErrAlreadyRunning means an enhancement is already in flight; at most
	// one runs per session.
	ErrAlreadyRunning = errors.New("enhancement already running")
)

package session

import "errors"

// Errors surfaced by the session core. Transport adapters map these onto
// their own status codes; none of them is fatal to the process.
var (
	// ErrInvalidConfig - bad or missing sample rate at session open.
	ErrInvalidConfig = errors.New("invalid session config")

	// ErrMalformedFrame - a binary payload that is not a whole number of
	// 16-bit samples. The frame is rejected; the session stays open.
	ErrMalformedFrame = errors.New("malformed audio frame")

	// ErrSessionClosed - an operation on a session past its lifetime.
	ErrSessionClosed = errors.New("session is closed")

	// ErrCapacityExceeded - the configured concurrent-session limit is
	// reached; the new session is refused at open time.
	ErrCapacityExceeded = errors.New("session capacity exceeded")

	// ErrEngineFailure - the decoder capability itself errored. The owning
	// session is torn down; other sessions are unaffected.
	ErrEngineFailure = errors.New("engine failure")
)

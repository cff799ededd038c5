package internal

import "errors"

// Error taxonomy for session operations. All of these are recovered locally;
// user-initiated failures are reported to the origin connection as a
// gameError event, none are fatal to the process.
var (
	// ErrNotFound means the session id is unknown to the registry.
	ErrNotFound = errors.New("game not found")

	// ErrFull means the session already seats the maximum number of players.
	ErrFull = errors.New("game is full")

	// ErrAlreadyStarted means a join was attempted after the session left the
	// lobby phase.
	ErrAlreadyStarted = errors.New("game already started")

	// ErrUnauthorized means a non-host issued a host-only control signal.
	// Matching the trust model, it is silently ignored, never surfaced.
	ErrUnauthorized = errors.New("not authorized")

	// ErrStaleReference means an operation raced with eviction and the
	// session id is no longer registered. Treated as a no-op, never a crash.
	ErrStaleReference = errors.New("stale session reference")
)

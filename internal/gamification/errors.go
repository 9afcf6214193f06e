package gamification

import "errors"

// Error kinds surfaced by the engine. Callers distinguish them with
// errors.Is; everything else wraps one of these or is a programming error.
var (
	// ErrStoreUnavailable marks a failure to reach the persistent store.
	// Public operations degrade to safe defaults when they see it.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a transaction that still conflicted after the
	// store's bounded retries. Transient; the caller may retry.
	ErrConflict = errors.New("transaction conflict")

	// ErrInvalid marks rejected input: an unknown badge criterion key at
	// seed time, a malformed XP config, an empty user id.
	ErrInvalid = errors.New("invalid")
)

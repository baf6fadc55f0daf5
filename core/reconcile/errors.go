package reconcile

import "errors"

// Failure taxonomy shared by all handlers. The worker classifies on these:
// a guard failure is an expected no-op, everything else aborts the handler
// with no write and no retry.
var (
	// ErrMissingIdentity means the event carried no usable record id;
	// the handler aborts before any remote call.
	ErrMissingIdentity = errors.New("no record identity in event")

	// ErrNotFound means a referenced remote record does not exist.
	ErrNotFound = errors.New("remote record not found")

	// ErrGuardFailed means the event was valid but the transition is not
	// applicable to the current remote state. Re-invoking the same event
	// later or again is safe precisely because of this guard.
	ErrGuardFailed = errors.New("transition guard not satisfied")
)

// Package remote defines the error taxonomy shared by the API client and the
// mutation coordinator. Every remote-store failure is one of these kinds; the
// coordinator decides rollback behavior from the kind alone.
package remote

import "errors"

var (
	// ErrNotFound means the addressed entity no longer exists. Cached
	// state for it is dropped, never rolled back to a stale value.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the mutation lost a race or targeted state that
	// does not permit it (e.g. a terminal list). Surfaced after rollback;
	// the user may resubmit.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized means the session is missing or expired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable covers transient transport and server failures.
	// Mutations are never retried automatically; reads may be.
	ErrUnavailable = errors.New("service unavailable")
)

// ValidationError is a local, non-retryable rejection raised before any
// network call or cache mutation happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRetryable reports whether a failed read may be retried. Validation,
// conflict, not-found and auth failures are final; only transient faults
// qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// Package fail defines the error kinds shared by every core component.
// Callers classify with errors.Is and wrap with fmt.Errorf("...: %w", err).
package fail

import "errors"

var (
	// ErrNotFound covers both a genuinely missing record and a record the
	// caller doesn't own. The two cases are deliberately indistinguishable
	// so existence can't be probed by unauthorized callers.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks a request missing a required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized marks a missing, invalid or expired session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks a valid session without the needed privilege.
	ErrForbidden = errors.New("forbidden")

	// ErrStoreUnavailable marks a transient failure of one of the backing
	// stores. It is propagated as-is, never retried internally.
	ErrStoreUnavailable = errors.New("store unavailable")
)

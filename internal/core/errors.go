package core

import "errors"

// Failure taxonomy shared by the lifecycle manager, storage and HTTP layers.
// Everything here is a local, typed failure returned to the immediate caller;
// infrastructure errors are wrapped with %w and stay distinguishable from
// these sentinels.
var (
	// ErrNotFound marks a referenced project, expense or user id that does
	// not resolve against the ledger.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized marks a request whose identity is missing or whose
	// role is insufficient for the attempted mutation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTransition marks a review attempt on a non-pending expense,
	// including the loser of a concurrent double review.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError is a malformed-input failure with field-level detail,
// recoverable by the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

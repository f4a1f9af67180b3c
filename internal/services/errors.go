package services

import (
	"errors"
	"fmt"
)

// Failure classes the handlers translate to HTTP outcomes. Everything else
// that bubbles out of a service is an internal error.
var (
	// ErrNotAuthenticated is returned for a bad username and for a bad
	// password alike; callers cannot tell the two apart.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnauthorized marks an operation attempted by someone other than
	// the owner, or with no identity at all.
	ErrUnauthorized = errors.New("access unauthorized")

	ErrNotFound = errors.New("not found")
)

// ValidationError rejects malformed input before any storage write.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

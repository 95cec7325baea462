package session

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrNotAuthenticated   = errors.New("no authenticated session")
)

// AuthenticationError is returned by Login when the backend rejects the
// credentials. It wraps the transport error so the backend-provided message
// stays available to the caller for display.
type AuthenticationError struct {
	cause error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.cause)
}

func (e *AuthenticationError) Unwrap() error {
	return e.cause
}

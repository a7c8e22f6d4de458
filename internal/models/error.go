package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authentication errors
	ErrRateLimited        = errors.New("too many failed login attempts")
	ErrUserNotFound       = errors.New("user not found")
	ErrBadPassword        = errors.New("password mismatch")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrDuplicateUser      = errors.New("username already registered")

	// Session errors
	ErrUnauthenticated = errors.New("no session token presented")
	ErrInvalidToken    = errors.New("invalid session token")

	// Content errors
	ErrEmptyContent = errors.New("article content is empty")
)

// RegistrationError reports a failed account insert. It matches
// ErrRegistrationFailed, and also ErrDuplicateUser when the store rejected
// the username as taken. Cause is the store error shown to the client.
type RegistrationError struct {
	Cause error
}

func (e *RegistrationError) Error() string {
	return ErrRegistrationFailed.Error() + ": " + e.Cause.Error()
}

func (e *RegistrationError) Unwrap() error { return e.Cause }

func (e *RegistrationError) Is(target error) bool {
	switch target {
	case ErrRegistrationFailed:
		return true
	case ErrDuplicateUser:
		return errors.Is(e.Cause, ErrConflict)
	}
	return false
}

package service

import "errors"

var (
	// ErrInvalidCredentials covers both unknown login and wrong password.
	// The message is deliberately generic so callers cannot enumerate
	// accounts by comparing error text.
	ErrInvalidCredentials = errors.New("invalid login or password")

	// ErrConflict is returned when the username or email is already claimed.
	ErrConflict = errors.New("username or email is already taken")

	// ErrUnauthenticated is returned for a missing, unknown or expired
	// token. It is an expected outcome, never fatal; transports map it to
	// a 401 and clear cookies where the session cannot recover.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden is for authenticated callers that do not own the
	// resource. The auth core never returns it itself; downstream CRUD
	// handlers share the taxonomy.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports a violated field constraint. The message names the
// constraint and is safe to show to the client.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

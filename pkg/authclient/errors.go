package authclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is returned when the session could not be refreshed. The
// caller should send the user back through login; retrying will not help.
var ErrSessionExpired = errors.New("authclient: session expired")

// APIError is a non-2xx response from the auth service.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Message is the server's error message.
	Message string

	// Field names the offending input for validation failures, "" otherwise.
	Field string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("authclient: %s (field %s)", e.Message, e.Field)
	}
	return fmt.Sprintf("authclient: %s", e.Message)
}

// IsUnauthorized reports whether err is a 401 from the service.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsConflict reports whether err is a 409, i.e. a taken username or email.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsValidation reports whether err is a field validation failure, returning
// the field name when it is.
func IsValidation(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest && apiErr.Field != "" {
		return apiErr.Field, true
	}
	return "", false
}

// parseErrorResponse turns a non-2xx response body into an *APIError.
func parseErrorResponse(statusCode int, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode: statusCode,
			Message:    errResp.Error,
			Field:      errResp.Field,
		}
	}

	return &APIError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", statusCode, http.StatusText(statusCode)),
	}
}

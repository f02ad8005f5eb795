package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session gateway
var (
	// Token errors
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrNoAccessToken = errors.New("no access token received")

	// Session errors
	ErrSessionExpired = errors.New("session expired")
	ErrRefreshFailed  = errors.New("access token refresh failed")
	ErrNoRefreshToken = errors.New("no refresh token")

	// Request errors
	ErrInvalidRequest  = errors.New("invalid request")
	ErrUnknownProvider = errors.New("unknown sign-in provider")
	ErrUnexpectedBody  = errors.New("unexpected response body")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// APIError is a non-success response from the course backend. Message is
// the backend supplied message and may be empty.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API Request Failed: %d", e.StatusCode)
	}
	return e.Message
}

func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

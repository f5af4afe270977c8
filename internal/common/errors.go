package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthenticated")
	ErrInvalidInput = errors.New("invalid input")

	// Entity lookups
	ErrTopicNotFound    = fmt.Errorf("topic %w", ErrNotFound)
	ErrPostNotFound     = fmt.Errorf("post %w", ErrNotFound)
	ErrLocationNotFound = fmt.Errorf("location %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	// Vote errors
	ErrInvalidTarget = fmt.Errorf("%w: vote target must reference exactly one entity", ErrInvalidInput)
	ErrInvalidValue  = fmt.Errorf("%w: vote value must be -1, 0 or 1", ErrInvalidInput)
)

// Invalid wraps a validation message so that it maps to ErrInvalidInput
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// StatusFor maps a service error to its HTTP status. Unknown errors are internal.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

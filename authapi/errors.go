package authapi

import (
	"fmt"

	apperrors "github.com/jrsteele09/go-cinema-auth/internal/errors"
)

// Error is returned for non-2xx responses and for 2xx responses without a payload.
// Message carries the server provided message when there was one.
type Error struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Endpoint, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %v (status %d)", e.Endpoint, e.Err, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ServerMessage returns the backend message, if any, from an error chain.
func ServerMessage(err error) string {
	var apiErr *Error
	if apperrors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session authority
var (
	// Sign-in errors
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrFederatedAuth  = errors.New("federated authentication error")

	// Token errors
	ErrRefreshAccessToken = errors.New("refresh access token error")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Federated flow errors
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidNonce = errors.New("invalid nonce")

	// Remote API errors
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMissingPayload   = errors.New("missing payload")
)

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

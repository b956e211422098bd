package session

import (
	"fmt"

	apperrors "github.com/jrsteele09/go-cinema-auth/internal/errors"
)

// Generic messages used when the backend does not send one.
const (
	msgCredentialsRequired = "email and password are required"
	msgIDTokenRequired     = "identity token is required"
	msgLoginFailed         = "login failed"
	msgGoogleLoginFailed   = "google login failed"
	msgRefreshFailed       = "failed to refresh token"
)

// AuthError is the structured cause of a failed transition. Kind is one of
// ErrValidation, ErrAuthentication, ErrFederatedAuth or ErrRefreshAccessToken.
type AuthError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newAuthError(kind error, message string, err error) *AuthError {
	return &AuthError{Kind: kind, Message: message, Err: err}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return apperrors.Is(err, apperrors.ErrValidation)
}

package error

import "errors"

// Authentication domain errors.
var (
	// ErrMissingToken is returned when no bearer token accompanies a request.
	ErrMissingToken = errors.New("authorization token is required")

	// ErrInvalidToken is returned when the bearer token fails validation.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// AuthErrorCode defines error codes for authentication errors.
type AuthErrorCode string

const (
	ErrCodeInvalidToken AuthErrorCode = "AUTH-030001"
	ErrCodeMissingToken AuthErrorCode = "AUTH-030003"
)

// AuthError represents an authentication error with code and message.
type AuthError struct {
	Code    AuthErrorCode
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a new AuthError with the given code and message.
func NewAuthError(code AuthErrorCode, message string, err error) *AuthError {
	return &AuthError{Code: code, Message: message, Err: err}
}

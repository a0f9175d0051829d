package error

import "errors"

// Token ledger domain errors.
var (
	// ErrInsufficientTokenBalance is returned when the owner's balance is
	// below the minimum required for a metered operation.
	ErrInsufficientTokenBalance = errors.New("insufficient token balance")

	// ErrUnknownTokenPlan is returned when a ledger references a plan with no
	// configured allotment.
	ErrUnknownTokenPlan = errors.New("unknown token plan")

	// ErrAdvisorUnavailable is returned when the AI advisor is not configured.
	ErrAdvisorUnavailable = errors.New("advisor service unavailable")
)

// TokenErrorCode defines error codes for token ledger errors.
type TokenErrorCode string

const (
	ErrCodeInsufficientBalance TokenErrorCode = "TOK-010001"
	ErrCodeUnknownPlan         TokenErrorCode = "TOK-010002"
	ErrCodeAdvisorUnavailable  TokenErrorCode = "TOK-020001"
	ErrCodeRateLimited         TokenErrorCode = "TOK-020002"
)

// TokenError represents a token ledger error with code and message.
type TokenError struct {
	Code    TokenErrorCode
	Message string
	Err     error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// NewTokenError creates a new TokenError with the given code and message.
func NewTokenError(code TokenErrorCode, message string, err error) *TokenError {
	return &TokenError{Code: code, Message: message, Err: err}
}

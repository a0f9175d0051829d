// Package error defines domain-specific errors for the finance event core.
package error

import "errors"

// Expense domain errors.
var (
	// ErrExpenseNotFound is returned when an expense is not found in the system.
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrNotAuthorizedToModifyExpense is returned when the caller does not own the expense.
	ErrNotAuthorizedToModifyExpense = errors.New("not authorized to modify expense")

	// ErrInvalidExpenseAmount is returned when the expense amount is zero or negative.
	ErrInvalidExpenseAmount = errors.New("invalid expense amount")

	// ErrEmptyExpenseIDs is returned when an empty list of expense IDs is provided.
	ErrEmptyExpenseIDs = errors.New("expense IDs list cannot be empty")

	// ErrExpenseIDsNotFound is returned when one or more expense IDs are not found.
	ErrExpenseIDsNotFound = errors.New("one or more expenses not found")

	// ErrMissingIdempotencyKey is returned when a creation command arrives without an idempotency key.
	ErrMissingIdempotencyKey = errors.New("idempotency key is required")

	// ErrDescriptionTooLong is returned when the description exceeds the maximum length.
	ErrDescriptionTooLong = errors.New("description too long")
)

// ExpenseErrorCode defines error codes for expense errors.
// Format: EXP-XXYYYY where XX is category and YYYY is specific error.
type ExpenseErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidExpenseAmount   ExpenseErrorCode = "EXP-010001"
	ErrCodeExpenseNotFound        ExpenseErrorCode = "EXP-010002"
	ErrCodeNotAuthorizedExpense   ExpenseErrorCode = "EXP-010003"
	ErrCodeEmptyExpenseIDs        ExpenseErrorCode = "EXP-010004"
	ErrCodeExpenseIDsNotFound     ExpenseErrorCode = "EXP-010005"
	ErrCodeMissingIdempotencyKey  ExpenseErrorCode = "EXP-010006"
	ErrCodeExpenseDescriptionLong ExpenseErrorCode = "EXP-010007"
	ErrCodeMissingExpenseFields   ExpenseErrorCode = "EXP-010008"
)

// ExpenseError represents an expense error with code and message.
type ExpenseError struct {
	Code    ExpenseErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ExpenseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ExpenseError) Unwrap() error {
	return e.Err
}

// NewExpenseError creates a new ExpenseError with the given code and message.
func NewExpenseError(code ExpenseErrorCode, message string, err error) *ExpenseError {
	return &ExpenseError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

package error

import "errors"

// Income domain errors.
var (
	ErrIncomeNotFound              = errors.New("income not found")
	ErrNotAuthorizedToModifyIncome = errors.New("not authorized to modify income")
	ErrInvalidIncomeAmount         = errors.New("invalid income amount")
	ErrEmptyIncomeIDs              = errors.New("income IDs list cannot be empty")
	ErrIncomeIDsNotFound           = errors.New("one or more incomes not found")
)

// IncomeErrorCode defines error codes for income errors.
type IncomeErrorCode string

const (
	ErrCodeInvalidIncomeAmount  IncomeErrorCode = "INC-010001"
	ErrCodeIncomeNotFound       IncomeErrorCode = "INC-010002"
	ErrCodeNotAuthorizedIncome  IncomeErrorCode = "INC-010003"
	ErrCodeEmptyIncomeIDs       IncomeErrorCode = "INC-010004"
	ErrCodeIncomeIDsNotFound    IncomeErrorCode = "INC-010005"
	ErrCodeIncomeMissingIdemKey IncomeErrorCode = "INC-010006"
)

// IncomeError represents an income error with code and message.
type IncomeError struct {
	Code    IncomeErrorCode
	Message string
	Err     error
}

func (e *IncomeError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *IncomeError) Unwrap() error {
	return e.Err
}

// NewIncomeError creates a new IncomeError with the given code and message.
func NewIncomeError(code IncomeErrorCode, message string, err error) *IncomeError {
	return &IncomeError{Code: code, Message: message, Err: err}
}

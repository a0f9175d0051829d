package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/dto"
)

// respondError translates domain errors into HTTP responses. Unrecognized
// errors become a generic 500 so internals never leak to clients.
func respondError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, domainerror.ErrExpenseNotFound),
		errors.Is(err, domainerror.ErrIncomeNotFound),
		errors.Is(err, domainerror.ErrExpenseIDsNotFound),
		errors.Is(err, domainerror.ErrIncomeIDsNotFound),
		errors.Is(err, domainerror.ErrSagaNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domainerror.ErrInvalidExpenseAmount),
		errors.Is(err, domainerror.ErrInvalidIncomeAmount),
		errors.Is(err, domainerror.ErrEmptyExpenseIDs),
		errors.Is(err, domainerror.ErrEmptyIncomeIDs),
		errors.Is(err, domainerror.ErrMissingIdempotencyKey),
		errors.Is(err, domainerror.ErrDescriptionTooLong):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domainerror.ErrNotAuthorizedToModifyExpense),
		errors.Is(err, domainerror.ErrNotAuthorizedToModifyIncome):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, domainerror.ErrInsufficientTokenBalance):
		status = http.StatusPaymentRequired
		message = err.Error()
	case errors.Is(err, domainerror.ErrAdvisorUnavailable):
		status = http.StatusServiceUnavailable
		message = err.Error()
	}

	ctx.JSON(status, dto.ErrorResponse{
		Error: message,
		Code:  errorCode(err),
	})
}

// errorCode extracts the stable machine-readable code, when present.
func errorCode(err error) string {
	var expenseErr *domainerror.ExpenseError
	if errors.As(err, &expenseErr) {
		return string(expenseErr.Code)
	}
	var incomeErr *domainerror.IncomeError
	if errors.As(err, &incomeErr) {
		return string(incomeErr.Code)
	}
	var tokenErr *domainerror.TokenError
	if errors.As(err, &tokenErr) {
		return string(tokenErr.Code)
	}
	return ""
}

// unauthenticated writes the standard response for a missing owner context.
func unauthenticated(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: "Owner not authenticated",
		Code:  string(domainerror.ErrCodeMissingToken),
	})
}

// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/eventcore/internal/application/usecase/expense"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/middleware"
)

// IdempotencyKeyHeader carries the caller-supplied command key.
const IdempotencyKeyHeader = "Idempotency-Key"

// ExpenseController handles expense endpoints.
type ExpenseController struct {
	createUseCase *expense.CreateExpenseUseCase
	deleteUseCase *expense.DeleteExpensesUseCase
}

// NewExpenseController creates a new expense controller instance.
func NewExpenseController(
	createUseCase *expense.CreateExpenseUseCase,
	deleteUseCase *expense.DeleteExpensesUseCase,
) *ExpenseController {
	return &ExpenseController{
		createUseCase: createUseCase,
		deleteUseCase: deleteUseCase,
	}
}

// Create handles POST /expenses requests.
func (c *ExpenseController) Create(ctx *gin.Context) {
	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	var req dto.CreateExpenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), expense.CreateExpenseInput{
		OwnerID:        ownerID,
		IdempotencyKey: ctx.GetHeader(IdempotencyKeyHeader),
		Description:    req.Description,
		Amount:         req.Amount,
		Category:       req.Category,
		Triggers:       req.Triggers,
		Mood:           req.Mood,
		OccurredAt:     req.OccurredAt,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	status := http.StatusCreated
	if output.Replayed {
		status = http.StatusOK
	}
	ctx.JSON(status, toExpenseResponse(output.Expense))
}

// Delete handles DELETE /expenses requests.
func (c *ExpenseController) Delete(ctx *gin.Context) {
	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	var req dto.DeleteExpensesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	output, err := c.deleteUseCase.Execute(ctx.Request.Context(), expense.DeleteExpensesInput{
		OwnerID:    ownerID,
		ExpenseIDs: req.ExpenseIDs,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusAccepted, dto.DeleteExpensesResponse{
		SagaID:       output.SagaID,
		DeletedCount: output.DeletedCount,
	})
}

func toExpenseResponse(output *expense.ExpenseOutput) dto.ExpenseResponse {
	return dto.ExpenseResponse{
		ID:          output.ID,
		Description: output.Description,
		Amount:      output.Amount,
		Category:    output.Category,
		Triggers:    output.Triggers,
		Mood:        output.Mood,
		OccurredAt:  output.OccurredAt,
		CreatedAt:   output.CreatedAt,
	}
}

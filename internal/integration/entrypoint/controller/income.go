package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/eventcore/internal/application/usecase/income"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/middleware"
)

// IncomeController handles income endpoints.
type IncomeController struct {
	createUseCase *income.CreateIncomeUseCase
	deleteUseCase *income.DeleteIncomesUseCase
}

// NewIncomeController creates a new income controller instance.
func NewIncomeController(
	createUseCase *income.CreateIncomeUseCase,
	deleteUseCase *income.DeleteIncomesUseCase,
) *IncomeController {
	return &IncomeController{
		createUseCase: createUseCase,
		deleteUseCase: deleteUseCase,
	}
}

// Create handles POST /incomes requests.
func (c *IncomeController) Create(ctx *gin.Context) {
	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	var req dto.CreateIncomeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), income.CreateIncomeInput{
		OwnerID:        ownerID,
		IdempotencyKey: ctx.GetHeader(IdempotencyKeyHeader),
		Description:    req.Description,
		Amount:         req.Amount,
		Category:       req.Category,
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
	ctx.JSON(status, dto.IncomeResponse{
		ID:          output.Income.ID,
		Description: output.Income.Description,
		Amount:      output.Income.Amount,
		Category:    output.Income.Category,
		OccurredAt:  output.Income.OccurredAt,
		CreatedAt:   output.Income.CreatedAt,
	})
}

// Delete handles DELETE /incomes requests.
func (c *IncomeController) Delete(ctx *gin.Context) {
	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	var req dto.DeleteIncomesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	output, err := c.deleteUseCase.Execute(ctx.Request.Context(), income.DeleteIncomesInput{
		OwnerID:   ownerID,
		IncomeIDs: req.IncomeIDs,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusAccepted, dto.DeleteIncomesResponse{
		SagaID:       output.SagaID,
		DeletedCount: output.DeletedCount,
	})
}

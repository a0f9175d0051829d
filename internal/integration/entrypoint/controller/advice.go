package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/eventcore/internal/application/usecase/advisor"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/middleware"
)

// AdviceController handles the metered AI advice endpoint.
type AdviceController struct {
	getAdviceUseCase *advisor.GetAdviceUseCase
}

// NewAdviceController creates a new advice controller instance.
func NewAdviceController(getAdviceUseCase *advisor.GetAdviceUseCase) *AdviceController {
	return &AdviceController{
		getAdviceUseCase: getAdviceUseCase,
	}
}

// Ask handles POST /advice requests.
func (c *AdviceController) Ask(ctx *gin.Context) {
	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	var req dto.AdviceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	output, err := c.getAdviceUseCase.Execute(ctx.Request.Context(), advisor.GetAdviceInput{
		OwnerID:  ownerID,
		Question: req.Question,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.AdviceResponse{
		Answer:     output.Answer,
		TokensUsed: output.TokensUsed,
	})
}

package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/application/usecase/dashboard"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/eventcore/internal/integration/entrypoint/middleware"
)

// DashboardController handles dashboard and aggregate query endpoints.
type DashboardController struct {
	getDashboardUseCase  *dashboard.GetDashboardUseCase
	getAggregatesUseCase *dashboard.GetAggregatesUseCase
}

// NewDashboardController creates a new dashboard controller instance.
func NewDashboardController(
	getDashboardUseCase *dashboard.GetDashboardUseCase,
	getAggregatesUseCase *dashboard.GetAggregatesUseCase,
) *DashboardController {
	return &DashboardController{
		getDashboardUseCase:  getDashboardUseCase,
		getAggregatesUseCase: getAggregatesUseCase,
	}
}

// GetDashboard handles GET /dashboard requests.
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	output, err := c.getDashboardUseCase.Execute(ctx.Request.Context(), dashboard.GetDashboardInput{
		OwnerID: ownerID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	items := make([]dto.DashboardItemResponse, len(output.RecentItems))
	for i, item := range output.RecentItems {
		items[i] = dto.DashboardItemResponse{
			ID:          item.ID,
			SourceID:    item.SourceID,
			SourceType:  item.SourceType,
			Description: item.Description,
			Amount:      item.Amount,
			Category:    item.Category,
			OccurredAt:  item.OccurredAt,
		}
	}

	ctx.JSON(http.StatusOK, dto.DashboardResponse{
		RecentItems: items,
		Snapshot: dto.DashboardSnapshotResponse{
			Year:        output.Snapshot.Year,
			Month:       output.Snapshot.Month,
			TotalAmount: output.Snapshot.TotalAmount,
			TotalCount:  output.Snapshot.TotalCount,
			AppliedAt:   output.Snapshot.AppliedAt,
		},
	})
}

// GetAggregates handles GET /aggregates requests. Periods are passed as a
// comma-separated "YYYY-MM" list; the default is the current month.
func (c *DashboardController) GetAggregates(ctx *gin.Context) {
	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		unauthenticated(ctx)
		return
	}

	input := dashboard.GetAggregatesInput{OwnerID: ownerID}
	if periodsStr := ctx.Query("periods"); periodsStr != "" {
		for _, raw := range strings.Split(periodsStr, ",") {
			period, ok := parsePeriod(strings.TrimSpace(raw))
			if !ok {
				ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
					Error: "Invalid period format, expected YYYY-MM",
				})
				return
			}
			input.Periods = append(input.Periods, period)
		}
	}

	output, err := c.getAggregatesUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		respondError(ctx, err)
		return
	}

	aggregates := make([]dto.AggregateResponse, len(output.Aggregates))
	for i, agg := range output.Aggregates {
		aggregates[i] = dto.AggregateResponse{
			Year:        agg.Year,
			Month:       agg.Month,
			TotalAmount: agg.TotalAmount,
			TotalCount:  agg.TotalCount,
			Categories:  toBreakdownResponses(agg.Categories),
			Triggers:    toBreakdownResponses(agg.Triggers),
			Moods:       toBreakdownResponses(agg.Moods),
		}
	}

	ctx.JSON(http.StatusOK, dto.AggregatesResponse{Aggregates: aggregates})
}

func parsePeriod(raw string) (adapter.Period, bool) {
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return adapter.Period{}, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 2000 || year > 3000 {
		return adapter.Period{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return adapter.Period{}, false
	}
	return adapter.Period{Year: year, Month: month}, true
}

func toBreakdownResponses(entries []dashboard.BreakdownOutput) []dto.BreakdownResponse {
	if len(entries) == 0 {
		return nil
	}
	responses := make([]dto.BreakdownResponse, len(entries))
	for i, entry := range entries {
		responses[i] = dto.BreakdownResponse{
			Name:   entry.Name,
			Count:  entry.Count,
			Amount: entry.Amount,
		}
	}
	return responses
}

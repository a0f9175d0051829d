// Package dashboard contains dashboard read-side use cases.
package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
)

// GetDashboardInput represents the input for the dashboard query.
type GetDashboardInput struct {
	OwnerID uuid.UUID
}

// DashboardItemOutput is one entry of the recent-items list.
type DashboardItemOutput struct {
	ID          uuid.UUID       `json:"id"`
	SourceID    uuid.UUID       `json:"sourceId"`
	SourceType  string          `json:"sourceType"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// SnapshotOutput is the embedded current-period aggregate snapshot.
type SnapshotOutput struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalCount  int             `json:"totalCount"`
	AppliedAt   time.Time       `json:"appliedAt"`
}

// GetDashboardOutput represents the output of the dashboard query.
type GetDashboardOutput struct {
	RecentItems []DashboardItemOutput `json:"recentItems"`
	Snapshot    SnapshotOutput        `json:"snapshot"`
}

// GetDashboardUseCase serves the owner's dashboard read model. Reads never
// touch the authoritative tables; the projector alone keeps the model fresh.
type GetDashboardUseCase struct {
	dashboardRepo adapter.DashboardRepository
}

// NewGetDashboardUseCase creates a new GetDashboardUseCase instance.
func NewGetDashboardUseCase(dashboardRepo adapter.DashboardRepository) *GetDashboardUseCase {
	return &GetDashboardUseCase{
		dashboardRepo: dashboardRepo,
	}
}

// Execute returns the recent-items list in most-recent-first order together
// with the embedded snapshot.
func (uc *GetDashboardUseCase) Execute(ctx context.Context, input GetDashboardInput) (*GetDashboardOutput, error) {
	cache, err := uc.dashboardRepo.LoadOrCreate(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	items, err := uc.dashboardRepo.FindItems(ctx, cache.ItemIDs)
	if err != nil {
		return nil, err
	}

	recentItems := make([]DashboardItemOutput, len(items))
	for i, item := range items {
		recentItems[i] = DashboardItemOutput{
			ID:          item.ID,
			SourceID:    item.SourceID,
			SourceType:  item.SourceType,
			Description: item.Description,
			Amount:      item.Amount,
			Category:    item.Category,
			OccurredAt:  item.OccurredAt,
		}
	}

	return &GetDashboardOutput{
		RecentItems: recentItems,
		Snapshot: SnapshotOutput{
			Year:        cache.SnapshotYear,
			Month:       cache.SnapshotMonth,
			TotalAmount: cache.SnapshotTotalAmount,
			TotalCount:  cache.SnapshotTotalCount,
			AppliedAt:   cache.SnapshotAppliedAt,
		},
	}, nil
}

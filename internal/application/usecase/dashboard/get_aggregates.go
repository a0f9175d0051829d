package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// GetAggregatesInput represents the input for the aggregates query. An
// empty period list defaults to the current month.
type GetAggregatesInput struct {
	OwnerID uuid.UUID
	Periods []adapter.Period
}

// BreakdownOutput is one slice of a per-dimension breakdown.
type BreakdownOutput struct {
	Name   string          `json:"name"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// AggregateOutput is the serializable monthly aggregate view.
type AggregateOutput struct {
	Year        int               `json:"year"`
	Month       int               `json:"month"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	TotalCount  int               `json:"totalCount"`
	Categories  []BreakdownOutput `json:"categories,omitempty"`
	Triggers    []BreakdownOutput `json:"triggers,omitempty"`
	Moods       []BreakdownOutput `json:"moods,omitempty"`
}

// GetAggregatesOutput represents the output of the aggregates query.
type GetAggregatesOutput struct {
	Aggregates []AggregateOutput `json:"aggregates"`
}

// GetAggregatesUseCase serves the owner's monthly aggregates.
type GetAggregatesUseCase struct {
	aggregateRepo adapter.AggregateRepository
}

// NewGetAggregatesUseCase creates a new GetAggregatesUseCase instance.
func NewGetAggregatesUseCase(aggregateRepo adapter.AggregateRepository) *GetAggregatesUseCase {
	return &GetAggregatesUseCase{
		aggregateRepo: aggregateRepo,
	}
}

// Execute returns the aggregates for the requested periods. Periods that
// never received an event are absent from the result.
func (uc *GetAggregatesUseCase) Execute(ctx context.Context, input GetAggregatesInput) (*GetAggregatesOutput, error) {
	periods := input.Periods
	if len(periods) == 0 {
		now := time.Now().UTC()
		periods = []adapter.Period{{Year: now.Year(), Month: int(now.Month())}}
	}

	aggregates, err := uc.aggregateRepo.FindByPeriods(ctx, input.OwnerID, periods)
	if err != nil {
		return nil, err
	}

	outputs := make([]AggregateOutput, len(aggregates))
	for i, agg := range aggregates {
		outputs[i] = AggregateOutput{
			Year:        agg.Year,
			Month:       agg.Month,
			TotalAmount: agg.TotalAmount,
			TotalCount:  agg.TotalCount,
			Categories:  toBreakdownOutputs(agg.Categories),
			Triggers:    toBreakdownOutputs(agg.Triggers),
			Moods:       toBreakdownOutputs(agg.Moods),
		}
	}

	return &GetAggregatesOutput{Aggregates: outputs}, nil
}

func toBreakdownOutputs(entries []entity.BreakdownEntry) []BreakdownOutput {
	if len(entries) == 0 {
		return nil
	}
	outputs := make([]BreakdownOutput, len(entries))
	for i, entry := range entries {
		outputs[i] = BreakdownOutput{
			Name:   entry.Name,
			Count:  entry.Count,
			Amount: entry.Amount,
		}
	}
	return outputs
}

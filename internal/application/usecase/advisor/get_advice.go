// Package advisor contains the metered AI advice use case.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
)

// HistoryMonths is how many months of aggregates ground the advice prompt.
const HistoryMonths = 3

// GetAdviceInput represents the input for an advice request.
type GetAdviceInput struct {
	OwnerID  uuid.UUID
	Question string
}

// GetAdviceOutput represents the output of an advice request.
type GetAdviceOutput struct {
	Answer     string `json:"answer"`
	TokensUsed int64  `json:"tokensUsed"`
}

// GetAdviceUseCase answers spending questions through the AI advisor under
// the post-paid token metering contract: the balance gates admission at a
// configured minimum, and the measured usage is settled after the call.
type GetAdviceUseCase struct {
	tokenRepo        adapter.TokenLedgerRepository
	aggregateRepo    adapter.AggregateRepository
	adviceLogRepo    adapter.AdviceLogRepository
	advisor          adapter.AdvisorService
	minAdviceBalance int64
}

// NewGetAdviceUseCase creates a new GetAdviceUseCase instance.
func NewGetAdviceUseCase(
	tokenRepo adapter.TokenLedgerRepository,
	aggregateRepo adapter.AggregateRepository,
	adviceLogRepo adapter.AdviceLogRepository,
	advisor adapter.AdvisorService,
	minAdviceBalance int64,
) *GetAdviceUseCase {
	return &GetAdviceUseCase{
		tokenRepo:        tokenRepo,
		aggregateRepo:    aggregateRepo,
		adviceLogRepo:    adviceLogRepo,
		advisor:          advisor,
		minAdviceBalance: minAdviceBalance,
	}
}

// Execute runs the metered advice flow. Usage is unknowable before the
// model call, so admission checks the balance against a minimum and the
// actual usage is debited afterwards, floored at zero.
func (uc *GetAdviceUseCase) Execute(ctx context.Context, input GetAdviceInput) (*GetAdviceOutput, error) {
	if !uc.advisor.IsAvailable() {
		return nil, domainerror.NewTokenError(
			domainerror.ErrCodeAdvisorUnavailable,
			"advisor service is not configured",
			domainerror.ErrAdvisorUnavailable,
		)
	}

	now := time.Now().UTC()

	ledger, err := uc.tokenRepo.EnsureAndRefill(ctx, input.OwnerID, now)
	if err != nil {
		return nil, err
	}
	if ledger.Balance < uc.minAdviceBalance {
		return nil, domainerror.NewTokenError(
			domainerror.ErrCodeInsufficientBalance,
			fmt.Sprintf("balance %d is below the required minimum %d", ledger.Balance, uc.minAdviceBalance),
			domainerror.ErrInsufficientTokenBalance,
		)
	}

	aggregates, err := uc.aggregateRepo.FindByPeriods(ctx, input.OwnerID, recentPeriods(now, HistoryMonths))
	if err != nil {
		return nil, err
	}

	result, err := uc.advisor.Generate(ctx, &adapter.AdviceRequest{
		OwnerID:    input.OwnerID,
		Question:   input.Question,
		Aggregates: aggregates,
	})
	if err != nil {
		// Nothing is debited for a failed call.
		return nil, err
	}

	if err := uc.tokenRepo.Settle(ctx, input.OwnerID, result.TokensUsed); err != nil {
		// The answer was already produced; an unsettled debit is logged and
		// absorbed rather than surfaced as a failure.
		slog.Error("failed to settle token usage",
			"ownerId", input.OwnerID,
			"tokensUsed", result.TokensUsed,
			"error", err)
	}

	log := entity.NewAdviceLog(input.OwnerID, input.Question, result.Answer, topicsOf(aggregates), result.TokensUsed)
	if err := uc.adviceLogRepo.Create(ctx, log); err != nil {
		slog.Warn("failed to archive advice interaction",
			"ownerId", input.OwnerID,
			"error", err)
	}

	return &GetAdviceOutput{
		Answer:     result.Answer,
		TokensUsed: result.TokensUsed,
	}, nil
}

// recentPeriods lists the current month and the n-1 months before it.
func recentPeriods(now time.Time, n int) []adapter.Period {
	periods := make([]adapter.Period, 0, n)
	t := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		periods = append(periods, adapter.Period{Year: t.Year(), Month: int(t.Month())})
		t = t.AddDate(0, -1, 0)
	}
	return periods
}

func topicsOf(aggregates []*entity.MonthlyAggregate) []string {
	seen := make(map[string]struct{})
	topics := make([]string, 0)
	for _, agg := range aggregates {
		for _, c := range agg.Categories {
			if _, ok := seen[c.Name]; ok {
				continue
			}
			seen[c.Name] = struct{}{}
			topics = append(topics, c.Name)
		}
	}
	return topics
}

// Package income contains income-related use cases.
package income

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
	"github.com/finance-tracker/eventcore/internal/domain/event"
)

// CreateIncomeInput represents the input for income creation.
type CreateIncomeInput struct {
	OwnerID        uuid.UUID
	IdempotencyKey string
	Description    string
	Amount         decimal.Decimal
	Category       string
	OccurredAt     time.Time
}

// CreateIncomeOutput represents the output of income creation.
type CreateIncomeOutput struct {
	Income   *IncomeOutput
	Replayed bool
}

// CreateIncomeUseCase handles income creation logic.
type CreateIncomeUseCase struct {
	incomeRepo  adapter.IncomeRepository
	idempotency adapter.IdempotencyLedger
}

// NewCreateIncomeUseCase creates a new CreateIncomeUseCase instance.
func NewCreateIncomeUseCase(
	incomeRepo adapter.IncomeRepository,
	idempotency adapter.IdempotencyLedger,
) *CreateIncomeUseCase {
	return &CreateIncomeUseCase{
		incomeRepo:  incomeRepo,
		idempotency: idempotency,
	}
}

// Execute performs the income creation with the same idempotency and
// publish-after-commit contract as expense creation.
func (uc *CreateIncomeUseCase) Execute(ctx context.Context, input CreateIncomeInput) (*CreateIncomeOutput, error) {
	if input.IdempotencyKey == "" {
		return nil, domainerror.NewIncomeError(
			domainerror.ErrCodeIncomeMissingIdemKey,
			"idempotency key is required for creation commands",
			domainerror.ErrMissingIdempotencyKey,
		)
	}

	if !input.Amount.IsPositive() {
		return nil, domainerror.NewIncomeError(
			domainerror.ErrCodeInvalidIncomeAmount,
			"amount must be greater than zero",
			domainerror.ErrInvalidIncomeAmount,
		)
	}

	cached, found, err := uc.idempotency.Begin(ctx, input.IdempotencyKey, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if found {
		var output IncomeOutput
		if err := json.Unmarshal(cached, &output); err != nil {
			return nil, fmt.Errorf("failed to decode cached response: %w", err)
		}
		return &CreateIncomeOutput{Income: &output, Replayed: true}, nil
	}

	income := entity.NewIncome(
		input.OwnerID,
		input.Description,
		input.Amount,
		input.Category,
		input.OccurredAt,
	)

	env, err := event.NewEnvelope(event.IncomeCreatedName, input.OwnerID, event.IncomeCreated{
		Income: incomeRecord(income),
	})
	if err != nil {
		return nil, err
	}

	if err := uc.incomeRepo.Create(ctx, income, entity.NewOutboxMessage(env)); err != nil {
		return nil, err
	}

	output := toIncomeOutput(income)

	response, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	if err := uc.idempotency.Commit(ctx, input.IdempotencyKey, input.OwnerID, response); err != nil {
		slog.Warn("failed to commit idempotency key",
			"key", input.IdempotencyKey,
			"ownerId", input.OwnerID,
			"error", err)
	}

	return &CreateIncomeOutput{Income: output}, nil
}

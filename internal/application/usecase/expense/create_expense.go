// Package expense contains expense-related use cases.
package expense

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

// MaxDescriptionLength is the maximum allowed length for expense descriptions.
const MaxDescriptionLength = 255

// CreateExpenseInput represents the input for expense creation.
type CreateExpenseInput struct {
	OwnerID        uuid.UUID
	IdempotencyKey string
	Description    string
	Amount         decimal.Decimal
	Category       string
	Triggers       []string
	Mood           string
	OccurredAt     time.Time
}

// CreateExpenseOutput represents the output of expense creation.
type CreateExpenseOutput struct {
	Expense *ExpenseOutput

	// Replayed is true when the response was served from the idempotency
	// ledger instead of executing the command again.
	Replayed bool
}

// CreateExpenseUseCase handles expense creation logic.
type CreateExpenseUseCase struct {
	expenseRepo adapter.ExpenseRepository
	idempotency adapter.IdempotencyLedger
}

// NewCreateExpenseUseCase creates a new CreateExpenseUseCase instance.
func NewCreateExpenseUseCase(
	expenseRepo adapter.ExpenseRepository,
	idempotency adapter.IdempotencyLedger,
) *CreateExpenseUseCase {
	return &CreateExpenseUseCase{
		expenseRepo: expenseRepo,
		idempotency: idempotency,
	}
}

// Execute performs the expense creation. The expense row and the staged
// created event commit in one transaction; the response is recorded in the
// idempotency ledger only after that commit succeeds.
func (uc *CreateExpenseUseCase) Execute(ctx context.Context, input CreateExpenseInput) (*CreateExpenseOutput, error) {
	if input.IdempotencyKey == "" {
		return nil, domainerror.NewExpenseError(
			domainerror.ErrCodeMissingIdempotencyKey,
			"idempotency key is required for creation commands",
			domainerror.ErrMissingIdempotencyKey,
		)
	}

	if !input.Amount.IsPositive() {
		return nil, domainerror.NewExpenseError(
			domainerror.ErrCodeInvalidExpenseAmount,
			"amount must be greater than zero",
			domainerror.ErrInvalidExpenseAmount,
		)
	}

	if len(input.Description) > MaxDescriptionLength {
		return nil, domainerror.NewExpenseError(
			domainerror.ErrCodeExpenseDescriptionLong,
			fmt.Sprintf("description must not exceed %d characters", MaxDescriptionLength),
			domainerror.ErrDescriptionTooLong,
		)
	}

	// A retried command that already succeeded replays the stored response.
	cached, found, err := uc.idempotency.Begin(ctx, input.IdempotencyKey, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if found {
		var output ExpenseOutput
		if err := json.Unmarshal(cached, &output); err != nil {
			return nil, fmt.Errorf("failed to decode cached response: %w", err)
		}
		return &CreateExpenseOutput{Expense: &output, Replayed: true}, nil
	}

	expense := entity.NewExpense(
		input.OwnerID,
		input.Description,
		input.Amount,
		input.Category,
		input.Triggers,
		input.Mood,
		input.OccurredAt,
	)

	env, err := event.NewEnvelope(event.ExpenseCreatedName, input.OwnerID, event.ExpenseCreated{
		Expense: expenseRecord(expense),
	})
	if err != nil {
		return nil, err
	}

	if err := uc.expenseRepo.Create(ctx, expense, entity.NewOutboxMessage(env)); err != nil {
		return nil, err
	}

	output := toExpenseOutput(expense)

	response, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	if err := uc.idempotency.Commit(ctx, input.IdempotencyKey, input.OwnerID, response); err != nil {
		// The write committed; a lost ledger entry only risks a duplicate
		// on a later retry, which the caller can reconcile.
		slog.Warn("failed to commit idempotency key",
			"key", input.IdempotencyKey,
			"ownerId", input.OwnerID,
			"error", err)
	}

	return &CreateExpenseOutput{Expense: output}, nil
}

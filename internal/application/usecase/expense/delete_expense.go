package expense

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
	"github.com/finance-tracker/eventcore/internal/domain/event"
)

// DeleteExpensesInput represents the input for expense deletion.
type DeleteExpensesInput struct {
	OwnerID    uuid.UUID
	ExpenseIDs []uuid.UUID
}

// DeleteExpensesOutput represents the output of expense deletion.
type DeleteExpensesOutput struct {
	SagaID       uuid.UUID
	DeletedCount int64
}

// DeleteExpensesUseCase starts the deletion saga for a set of expenses.
// Deleting an already-deleted expense surfaces as a not-found error, so the
// operation needs no idempotency key.
type DeleteExpensesUseCase struct {
	expenseRepo adapter.ExpenseRepository
}

// NewDeleteExpensesUseCase creates a new DeleteExpensesUseCase instance.
func NewDeleteExpensesUseCase(expenseRepo adapter.ExpenseRepository) *DeleteExpensesUseCase {
	return &DeleteExpensesUseCase{
		expenseRepo: expenseRepo,
	}
}

// Execute soft-deletes the expenses, records the saga and stages the
// deleted event in one transaction. The event embeds the full records so
// dependents can reverse their derived state without reading back rows
// that are already flagged deleted.
func (uc *DeleteExpensesUseCase) Execute(ctx context.Context, input DeleteExpensesInput) (*DeleteExpensesOutput, error) {
	if len(input.ExpenseIDs) == 0 {
		return nil, domainerror.NewExpenseError(
			domainerror.ErrCodeEmptyExpenseIDs,
			"at least one expense ID is required",
			domainerror.ErrEmptyExpenseIDs,
		)
	}

	expenses, err := uc.expenseRepo.FindByIDs(ctx, input.ExpenseIDs, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if len(expenses) != len(uniqueIDs(input.ExpenseIDs)) {
		return nil, domainerror.NewExpenseError(
			domainerror.ErrCodeExpenseIDsNotFound,
			"one or more expenses were not found for this owner",
			domainerror.ErrExpenseIDsNotFound,
		)
	}

	records := make([]event.ExpenseRecord, len(expenses))
	ids := make([]uuid.UUID, len(expenses))
	for i, exp := range expenses {
		records[i] = expenseRecord(exp)
		ids[i] = exp.ID
	}

	saga := entity.NewDeletionSaga("expense", ids, input.OwnerID)

	env, err := event.NewEnvelope(event.ExpenseDeletedName, input.OwnerID, event.ExpenseDeleted{
		SagaID:    saga.ID,
		Expenses:  records,
		DeletedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	outbox := entity.NewOutboxMessage(env)
	outbox.SagaID = &saga.ID

	deleted, err := uc.expenseRepo.SoftDelete(ctx, ids, input.OwnerID, saga, outbox)
	if err != nil {
		return nil, err
	}

	return &DeleteExpensesOutput{
		SagaID:       saga.ID,
		DeletedCount: deleted,
	}, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// ExpenseRepository persists authoritative expense records. Methods that
// take an outbox message or saga commit everything in one transaction so
// the event can never outlive a rolled-back write.
type ExpenseRepository interface {
	// Create stores the expense and stages its created event atomically.
	Create(ctx context.Context, expense *entity.Expense, outbox *entity.OutboxMessage) error

	// FindByID retrieves a live (not soft-deleted) expense.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error)

	// FindByIDs retrieves the owner's live expenses for the given IDs.
	FindByIDs(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID) ([]*entity.Expense, error)

	// SoftDelete flags the expenses deleted, records the saga and stages the
	// deleted event, all atomically. Returns the number of rows flagged.
	SoftDelete(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID, saga *entity.DeletionSaga, outbox *entity.OutboxMessage) (int64, error)

	// Restore flips the deleted flag back and saves the saga transition
	// atomically. Used by the compensation path.
	Restore(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID, saga *entity.DeletionSaga) error
}

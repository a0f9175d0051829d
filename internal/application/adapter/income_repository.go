package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// IncomeRepository persists authoritative income records with the same
// transactional contract as ExpenseRepository.
type IncomeRepository interface {
	Create(ctx context.Context, income *entity.Income, outbox *entity.OutboxMessage) error
	FindByIDs(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID) ([]*entity.Income, error)
	SoftDelete(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID, saga *entity.DeletionSaga, outbox *entity.OutboxMessage) (int64, error)
	Restore(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID, saga *entity.DeletionSaga) error
}

package adapter

import (
	"context"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// OutboxRepository is used by the relay worker to drain staged events.
// Rows are written by the other repositories inside command transactions.
type OutboxRepository interface {
	GetPending(ctx context.Context, limit int) ([]*entity.OutboxMessage, error)
	Update(ctx context.Context, msg *entity.OutboxMessage) error
}

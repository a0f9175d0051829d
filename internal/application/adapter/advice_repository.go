package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// AdviceLogRepository archives completed advice interactions.
type AdviceLogRepository interface {
	Create(ctx context.Context, log *entity.AdviceLog) error
	FindByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*entity.AdviceLog, error)
}

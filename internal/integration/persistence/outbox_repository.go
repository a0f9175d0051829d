package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	"github.com/finance-tracker/eventcore/internal/integration/persistence/model"
)

// outboxRepository implements the adapter.OutboxRepository interface. Rows
// are inserted by the other repositories inside command transactions; this
// repository only drains and updates them.
type outboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new outbox repository instance.
func NewOutboxRepository(db *gorm.DB) adapter.OutboxRepository {
	return &outboxRepository{
		db: db,
	}
}

// GetPending returns the oldest pending messages up to the limit.
func (r *outboxRepository) GetPending(ctx context.Context, limit int) ([]*entity.OutboxMessage, error) {
	var messageModels []model.OutboxMessageModel
	result := r.db.WithContext(ctx).
		Where("status = ?", string(entity.OutboxStatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&messageModels)
	if result.Error != nil {
		return nil, result.Error
	}

	messages := make([]*entity.OutboxMessage, len(messageModels))
	for i, mm := range messageModels {
		messages[i] = mm.ToEntity()
	}
	return messages, nil
}

// Update persists the message's publication outcome.
func (r *outboxRepository) Update(ctx context.Context, msg *entity.OutboxMessage) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model.OutboxFromEntity(msg)).Error
}

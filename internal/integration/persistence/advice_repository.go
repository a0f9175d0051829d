package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	"github.com/finance-tracker/eventcore/internal/integration/persistence/model"
)

// adviceLogRepository implements the adapter.AdviceLogRepository interface.
type adviceLogRepository struct {
	db *gorm.DB
}

// NewAdviceLogRepository creates a new advice log repository instance.
func NewAdviceLogRepository(db *gorm.DB) adapter.AdviceLogRepository {
	return &adviceLogRepository{
		db: db,
	}
}

// Create archives a completed advice interaction.
func (r *adviceLogRepository) Create(ctx context.Context, log *entity.AdviceLog) error {
	return r.db.WithContext(ctx).Create(model.AdviceLogFromEntity(log)).Error
}

// FindByOwner returns the owner's most recent advice interactions.
func (r *adviceLogRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*entity.AdviceLog, error) {
	var logModels []model.AdviceLogModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logModels)
	if result.Error != nil {
		return nil, result.Error
	}

	logs := make([]*entity.AdviceLog, len(logModels))
	for i, lm := range logModels {
		logs[i] = lm.ToEntity()
	}
	return logs, nil
}

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
	"github.com/finance-tracker/eventcore/internal/integration/persistence/model"
)

// sagaRepository implements the adapter.SagaRepository interface.
type sagaRepository struct {
	db *gorm.DB
}

// NewSagaRepository creates a new saga repository instance.
func NewSagaRepository(db *gorm.DB) adapter.SagaRepository {
	return &sagaRepository{
		db: db,
	}
}

// FindByID retrieves a deletion saga by its ID.
func (r *sagaRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.DeletionSaga, error) {
	var sagaModel model.DeletionSagaModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&sagaModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrSagaNotFound
		}
		return nil, result.Error
	}
	return sagaModel.ToEntity(), nil
}

// FindAwaitingBefore returns sagas still awaiting dependents whose last
// transition happened before the cutoff.
func (r *sagaRepository) FindAwaitingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.DeletionSaga, error) {
	var sagaModels []model.DeletionSagaModel
	result := r.db.WithContext(ctx).
		Where("state = ? AND updated_at < ?", string(entity.SagaStateAwaitingDependents), cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&sagaModels)
	if result.Error != nil {
		return nil, result.Error
	}

	sagas := make([]*entity.DeletionSaga, len(sagaModels))
	for i, sm := range sagaModels {
		sagas[i] = sm.ToEntity()
	}
	return sagas, nil
}

// Save persists the saga, inserting it on first save.
func (r *sagaRepository) Save(ctx context.Context, saga *entity.DeletionSaga) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model.SagaFromEntity(saga)).Error
}

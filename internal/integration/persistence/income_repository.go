package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	"github.com/finance-tracker/eventcore/internal/integration/persistence/model"
)

// incomeRepository implements the adapter.IncomeRepository interface.
type incomeRepository struct {
	db *gorm.DB
}

// NewIncomeRepository creates a new income repository instance.
func NewIncomeRepository(db *gorm.DB) adapter.IncomeRepository {
	return &incomeRepository{
		db: db,
	}
}

// Create stores the income and its staged event in one transaction.
func (r *incomeRepository) Create(ctx context.Context, income *entity.Income, outbox *entity.OutboxMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model.IncomeFromEntity(income)).Error; err != nil {
			return err
		}
		return tx.Create(model.OutboxFromEntity(outbox)).Error
	})
}

// FindByIDs retrieves the owner's live incomes for the given IDs.
func (r *incomeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID) ([]*entity.Income, error) {
	var incomeModels []model.IncomeModel
	result := r.db.WithContext(ctx).
		Where("id IN ? AND owner_id = ?", ids, ownerID).
		Find(&incomeModels)
	if result.Error != nil {
		return nil, result.Error
	}

	incomes := make([]*entity.Income, len(incomeModels))
	for i, im := range incomeModels {
		incomes[i] = im.ToEntity()
	}
	return incomes, nil
}

// SoftDelete flags the incomes deleted and records the saga and the staged
// deleted event in the same transaction.
func (r *incomeRepository) SoftDelete(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID, saga *entity.DeletionSaga, outbox *entity.OutboxMessage) (int64, error) {
	var flagged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id IN ? AND owner_id = ?", ids, ownerID).Delete(&model.IncomeModel{})
		if result.Error != nil {
			return result.Error
		}
		flagged = result.RowsAffected

		if err := tx.Create(model.SagaFromEntity(saga)).Error; err != nil {
			return err
		}
		return tx.Create(model.OutboxFromEntity(outbox)).Error
	})
	if err != nil {
		return 0, err
	}
	return flagged, nil
}

// Restore flips the deleted flag back and saves the saga transition in the
// same transaction.
func (r *incomeRepository) Restore(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID, saga *entity.DeletionSaga) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().
			Model(&model.IncomeModel{}).
			Where("id IN ? AND owner_id = ?", ids, ownerID).
			Update("deleted_at", nil)
		if result.Error != nil {
			return result.Error
		}
		return tx.Save(model.SagaFromEntity(saga)).Error
	})
}

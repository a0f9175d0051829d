// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
	"github.com/finance-tracker/eventcore/internal/integration/persistence/model"
)

// expenseRepository implements the adapter.ExpenseRepository interface.
type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository instance.
func NewExpenseRepository(db *gorm.DB) adapter.ExpenseRepository {
	return &expenseRepository{
		db: db,
	}
}

// Create stores the expense and its staged event in one transaction.
func (r *expenseRepository) Create(ctx context.Context, expense *entity.Expense, outbox *entity.OutboxMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model.ExpenseFromEntity(expense)).Error; err != nil {
			return err
		}
		return tx.Create(model.OutboxFromEntity(outbox)).Error
	})
}

// FindByID retrieves a live expense by its ID.
func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error) {
	var expenseModel model.ExpenseModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&expenseModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrExpenseNotFound
		}
		return nil, result.Error
	}
	return expenseModel.ToEntity(), nil
}

// FindByIDs retrieves the owner's live expenses for the given IDs. Missing
// IDs are simply absent from the result.
func (r *expenseRepository) FindByIDs(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID) ([]*entity.Expense, error) {
	var expenseModels []model.ExpenseModel
	result := r.db.WithContext(ctx).
		Where("id IN ? AND owner_id = ?", ids, ownerID).
		Find(&expenseModels)
	if result.Error != nil {
		return nil, result.Error
	}

	expenses := make([]*entity.Expense, len(expenseModels))
	for i, em := range expenseModels {
		expenses[i] = em.ToEntity()
	}
	return expenses, nil
}

// SoftDelete flags the expenses deleted and records the saga and the staged
// deleted event in the same transaction.
func (r *expenseRepository) SoftDelete(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID, saga *entity.DeletionSaga, outbox *entity.OutboxMessage) (int64, error) {
	var flagged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id IN ? AND owner_id = ?", ids, ownerID).Delete(&model.ExpenseModel{})
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
func (r *expenseRepository) Restore(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID, saga *entity.DeletionSaga) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().
			Model(&model.ExpenseModel{}).
			Where("id IN ? AND owner_id = ?", ids, ownerID).
			Update("deleted_at", nil)
		if result.Error != nil {
			return result.Error
		}
		return tx.Save(model.SagaFromEntity(saga)).Error
	})
}

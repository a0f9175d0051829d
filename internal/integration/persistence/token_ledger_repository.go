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

// tokenLedgerRepository implements the adapter.TokenLedgerRepository
// interface. Plan allotments come from configuration at construction time.
type tokenLedgerRepository struct {
	db          *gorm.DB
	defaultPlan string
	allotments  map[string]int64
}

// NewTokenLedgerRepository creates a new token ledger repository instance.
func NewTokenLedgerRepository(db *gorm.DB, defaultPlan string, allotments map[string]int64) adapter.TokenLedgerRepository {
	return &tokenLedgerRepository{
		db:          db,
		defaultPlan: defaultPlan,
		allotments:  allotments,
	}
}

// EnsureAndRefill loads the owner's ledger, creating it on first access,
// and applies the once-per-period refill when the month rolled over. The
// whole read-modify-write runs in one transaction keyed to a single owner.
func (r *tokenLedgerRepository) EnsureAndRefill(ctx context.Context, ownerID uuid.UUID, now time.Time) (*entity.TokenLedger, error) {
	var ledger *entity.TokenLedger
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ledgerModel model.TokenLedgerModel
		result := tx.Where("owner_id = ?", ownerID).First(&ledgerModel)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}
			allotment, ok := r.allotments[r.defaultPlan]
			if !ok {
				return domainerror.ErrUnknownTokenPlan
			}
			ledger = entity.NewTokenLedger(ownerID, r.defaultPlan, allotment, now)
			return tx.Create(model.TokenLedgerFromEntity(ledger)).Error
		}

		ledger = ledgerModel.ToEntity()
		allotment, ok := r.allotments[ledger.PlanID]
		if !ok {
			return domainerror.ErrUnknownTokenPlan
		}
		if ledger.RefillIfNewPeriod(now, allotment) {
			return saveLedger(tx, ledger)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// Settle debits the measured usage, floored at zero. A missing ledger means
// nothing was ever granted, so there is nothing to settle.
func (r *tokenLedgerRepository) Settle(ctx context.Context, ownerID uuid.UUID, used int64) error {
	if used <= 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ledgerModel model.TokenLedgerModel
		result := tx.Where("owner_id = ?", ownerID).First(&ledgerModel)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return nil
			}
			return result.Error
		}

		ledger := ledgerModel.ToEntity()
		ledger.Debit(used)
		return saveLedger(tx, ledger)
	})
}

// DeleteByOwner removes the ledger when the account is closed.
func (r *tokenLedgerRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&model.TokenLedgerModel{}).Error
}

func saveLedger(tx *gorm.DB, ledger *entity.TokenLedger) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		UpdateAll: true,
	}).Create(model.TokenLedgerFromEntity(ledger)).Error
}

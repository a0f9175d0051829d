package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	"github.com/finance-tracker/eventcore/internal/integration/persistence/model"
)

// aggregateRepository implements the adapter.AggregateRepository interface.
type aggregateRepository struct {
	db *gorm.DB
}

// NewAggregateRepository creates a new aggregate repository instance.
func NewAggregateRepository(db *gorm.DB) adapter.AggregateRepository {
	return &aggregateRepository{
		db: db,
	}
}

// LoadOrCreate returns the aggregate for the period, creating an empty one
// in memory on first access. The row is materialized on the first save.
func (r *aggregateRepository) LoadOrCreate(ctx context.Context, ownerID uuid.UUID, year, month int) (*entity.MonthlyAggregate, error) {
	var aggModel model.MonthlyAggregateModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND year = ? AND month = ?", ownerID, year, month).
		First(&aggModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return entity.NewMonthlyAggregate(ownerID, year, month), nil
		}
		return nil, result.Error
	}
	return aggModel.ToEntity(), nil
}

// FindEntry returns the detail row for the source, tombstoned or not, or
// nil when the source was never seen.
func (r *aggregateRepository) FindEntry(ctx context.Context, sourceID uuid.UUID) (*entity.AggregateEntry, error) {
	var entryModel model.AggregateEntryModel
	result := r.db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		First(&entryModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return entryModel.ToEntity(), nil
}

// SaveWithEntry persists the folded aggregate, the detail entry and the
// staged snapshot event in one transaction.
func (r *aggregateRepository) SaveWithEntry(ctx context.Context, agg *entity.MonthlyAggregate, entry *entity.AggregateEntry, outbox *entity.OutboxMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertAggregate(tx, agg); err != nil {
			return err
		}
		if err := tx.Create(model.AggregateEntryFromEntity(entry)).Error; err != nil {
			return err
		}
		if outbox == nil {
			return nil
		}
		return tx.Create(model.OutboxFromEntity(outbox)).Error
	})
}

// SaveWithTombstone persists the unfolded aggregate and tombstones the
// detail entry in one transaction. The tombstone blocks a reordered
// created event from folding the source back in.
func (r *aggregateRepository) SaveWithTombstone(ctx context.Context, agg *entity.MonthlyAggregate, sourceID uuid.UUID, outbox *entity.OutboxMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertAggregate(tx, agg); err != nil {
			return err
		}
		err := tx.Model(&model.AggregateEntryModel{}).
			Where("source_id = ?", sourceID).
			Update("deleted", true).Error
		if err != nil {
			return err
		}
		if outbox == nil {
			return nil
		}
		return tx.Create(model.OutboxFromEntity(outbox)).Error
	})
}

// SaveTombstone records a deletion observed before its creation. An
// existing row for the source wins the conflict and is left untouched.
func (r *aggregateRepository) SaveTombstone(ctx context.Context, entry *entity.AggregateEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_id"}},
		DoNothing: true,
	}).Create(model.AggregateEntryFromEntity(entry)).Error
}

// FindByPeriods returns the owner's aggregates for the given periods.
func (r *aggregateRepository) FindByPeriods(ctx context.Context, ownerID uuid.UUID, periods []adapter.Period) ([]*entity.MonthlyAggregate, error) {
	aggregates := make([]*entity.MonthlyAggregate, 0, len(periods))
	for _, period := range periods {
		var aggModel model.MonthlyAggregateModel
		result := r.db.WithContext(ctx).
			Where("owner_id = ? AND year = ? AND month = ?", ownerID, period.Year, period.Month).
			First(&aggModel)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, result.Error
		}
		aggregates = append(aggregates, aggModel.ToEntity())
	}
	return aggregates, nil
}

// DeleteByOwner wipes the owner's aggregates and detail entries.
func (r *aggregateRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", ownerID).Delete(&model.MonthlyAggregateModel{}).Error; err != nil {
			return err
		}
		return tx.Where("owner_id = ?", ownerID).Delete(&model.AggregateEntryModel{}).Error
	})
}

// upsertAggregate writes the aggregate row, inserting it on first save.
func upsertAggregate(tx *gorm.DB, agg *entity.MonthlyAggregate) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "year"}, {Name: "month"}},
		UpdateAll: true,
	}).Create(model.AggregateFromEntity(agg)).Error
}

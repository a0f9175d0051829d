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

// dashboardRepository implements the adapter.DashboardRepository interface.
type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new dashboard repository instance.
func NewDashboardRepository(db *gorm.DB) adapter.DashboardRepository {
	return &dashboardRepository{
		db: db,
	}
}

// LoadOrCreate returns the owner's cache, creating an empty one in memory
// on first access.
func (r *dashboardRepository) LoadOrCreate(ctx context.Context, ownerID uuid.UUID) (*entity.DashboardCache, error) {
	var cacheModel model.DashboardCacheModel
	result := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&cacheModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return entity.NewDashboardCache(ownerID), nil
		}
		return nil, result.Error
	}
	return cacheModel.ToEntity(), nil
}

// ItemExistsBySource reports whether a detail record or tombstone for the
// source entity already exists.
func (r *dashboardRepository) ItemExistsBySource(ctx context.Context, sourceID uuid.UUID) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.DashboardItemModel{}).
		Where("source_id = ?", sourceID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// SaveWithItem persists the cache, inserts the detail record and deletes
// the evicted ones as a unit.
func (r *dashboardRepository) SaveWithItem(ctx context.Context, cache *entity.DashboardCache, item *entity.DashboardItem, evictedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertCache(tx, cache); err != nil {
			return err
		}
		if err := tx.Create(model.DashboardItemFromEntity(item)).Error; err != nil {
			return err
		}
		if len(evictedIDs) == 0 {
			return nil
		}
		return tx.Where("id IN ?", evictedIDs).Delete(&model.DashboardItemModel{}).Error
	})
}

// ItemsBySource resolves authoritative source IDs to live detail records.
func (r *dashboardRepository) ItemsBySource(ctx context.Context, ownerID uuid.UUID, sourceIDs []uuid.UUID) ([]*entity.DashboardItem, error) {
	var itemModels []model.DashboardItemModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND source_id IN ? AND deleted = ?", ownerID, sourceIDs, false).
		Find(&itemModels)
	if result.Error != nil {
		return nil, result.Error
	}

	items := make([]*entity.DashboardItem, len(itemModels))
	for i, im := range itemModels {
		items[i] = im.ToEntity()
	}
	return items, nil
}

// SaveRemovingItems persists the cache and tombstones the detail records
// in one transaction.
func (r *dashboardRepository) SaveRemovingItems(ctx context.Context, cache *entity.DashboardCache, itemIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertCache(tx, cache); err != nil {
			return err
		}
		if len(itemIDs) == 0 {
			return nil
		}
		return tx.Model(&model.DashboardItemModel{}).
			Where("id IN ?", itemIDs).
			Update("deleted", true).Error
	})
}

// SaveItemTombstones records deletions observed before their creation. An
// existing row for a source wins the conflict and is left untouched.
func (r *dashboardRepository) SaveItemTombstones(ctx context.Context, items []*entity.DashboardItem) error {
	if len(items) == 0 {
		return nil
	}
	itemModels := make([]*model.DashboardItemModel, len(items))
	for i, item := range items {
		itemModels[i] = model.DashboardItemFromEntity(item)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_id"}},
		DoNothing: true,
	}).Create(itemModels).Error
}

// Save persists only the cache document.
func (r *dashboardRepository) Save(ctx context.Context, cache *entity.DashboardCache) error {
	return upsertCache(r.db.WithContext(ctx), cache)
}

// FindItems returns detail records in the order of the given IDs.
func (r *dashboardRepository) FindItems(ctx context.Context, itemIDs []uuid.UUID) ([]*entity.DashboardItem, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	var itemModels []model.DashboardItemModel
	result := r.db.WithContext(ctx).Where("id IN ?", itemIDs).Find(&itemModels)
	if result.Error != nil {
		return nil, result.Error
	}

	byID := make(map[uuid.UUID]*entity.DashboardItem, len(itemModels))
	for i := range itemModels {
		byID[itemModels[i].ID] = itemModels[i].ToEntity()
	}

	items := make([]*entity.DashboardItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// DeleteByOwner wipes the owner's cache and detail records.
func (r *dashboardRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", ownerID).Delete(&model.DashboardCacheModel{}).Error; err != nil {
			return err
		}
		return tx.Where("owner_id = ?", ownerID).Delete(&model.DashboardItemModel{}).Error
	})
}

// upsertCache writes the cache row, inserting it on first save.
func upsertCache(tx *gorm.DB, cache *entity.DashboardCache) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		UpdateAll: true,
	}).Create(model.DashboardCacheFromEntity(cache)).Error
}

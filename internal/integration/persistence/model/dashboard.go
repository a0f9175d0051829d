package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// DashboardCacheModel represents the dashboard_caches table.
type DashboardCacheModel struct {
	OwnerID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ItemIDs             []uuid.UUID     `gorm:"serializer:json;type:text"`
	SnapshotYear        int             `gorm:"not null"`
	SnapshotMonth       int             `gorm:"not null"`
	SnapshotTotalAmount decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	SnapshotTotalCount  int             `gorm:"not null"`
	SnapshotAppliedAt   time.Time
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for the DashboardCacheModel.
func (DashboardCacheModel) TableName() string {
	return "dashboard_caches"
}

// ToEntity converts a DashboardCacheModel to a domain DashboardCache.
func (m *DashboardCacheModel) ToEntity() *entity.DashboardCache {
	return &entity.DashboardCache{
		OwnerID:             m.OwnerID,
		ItemIDs:             m.ItemIDs,
		SnapshotYear:        m.SnapshotYear,
		SnapshotMonth:       m.SnapshotMonth,
		SnapshotTotalAmount: m.SnapshotTotalAmount,
		SnapshotTotalCount:  m.SnapshotTotalCount,
		SnapshotAppliedAt:   m.SnapshotAppliedAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// DashboardCacheFromEntity creates a DashboardCacheModel from a domain entity.
func DashboardCacheFromEntity(cache *entity.DashboardCache) *DashboardCacheModel {
	return &DashboardCacheModel{
		OwnerID:             cache.OwnerID,
		ItemIDs:             cache.ItemIDs,
		SnapshotYear:        cache.SnapshotYear,
		SnapshotMonth:       cache.SnapshotMonth,
		SnapshotTotalAmount: cache.SnapshotTotalAmount,
		SnapshotTotalCount:  cache.SnapshotTotalCount,
		SnapshotAppliedAt:   cache.SnapshotAppliedAt,
		CreatedAt:           cache.CreatedAt,
		UpdatedAt:           cache.UpdatedAt,
	}
}

// DashboardItemModel represents the dashboard_items table, the backing
// detail records behind the cache's bounded reference list. At most one
// row exists per source; a deleted row is a tombstone blocking reordered
// created events.
type DashboardItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	SourceType  string          `gorm:"type:varchar(20);not null"`
	Description string          `gorm:"type:varchar(255);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Category    string          `gorm:"type:varchar(100)"`
	Deleted     bool            `gorm:"not null;default:false"`
	OccurredAt  time.Time       `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the DashboardItemModel.
func (DashboardItemModel) TableName() string {
	return "dashboard_items"
}

// ToEntity converts a DashboardItemModel to a domain DashboardItem.
func (m *DashboardItemModel) ToEntity() *entity.DashboardItem {
	return &entity.DashboardItem{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		SourceID:    m.SourceID,
		SourceType:  m.SourceType,
		Description: m.Description,
		Amount:      m.Amount,
		Category:    m.Category,
		Deleted:     m.Deleted,
		OccurredAt:  m.OccurredAt,
		CreatedAt:   m.CreatedAt,
	}
}

// DashboardItemFromEntity creates a DashboardItemModel from a domain entity.
func DashboardItemFromEntity(item *entity.DashboardItem) *DashboardItemModel {
	return &DashboardItemModel{
		ID:          item.ID,
		OwnerID:     item.OwnerID,
		SourceID:    item.SourceID,
		SourceType:  item.SourceType,
		Description: item.Description,
		Amount:      item.Amount,
		Category:    item.Category,
		Deleted:     item.Deleted,
		OccurredAt:  item.OccurredAt,
		CreatedAt:   item.CreatedAt,
	}
}

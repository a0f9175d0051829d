package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// DashboardRepository is the dashboard projector's single store: the
// bounded recent-items cache and its backing detail records.
type DashboardRepository interface {
	LoadOrCreate(ctx context.Context, ownerID uuid.UUID) (*entity.DashboardCache, error)

	// ItemExistsBySource reports whether a detail record or tombstone for
	// the source entity already exists (redelivery and reorder dedup).
	ItemExistsBySource(ctx context.Context, sourceID uuid.UUID) (bool, error)

	// SaveWithItem persists the cache, inserts the new detail record and
	// deletes the evicted ones as a unit, leaving no orphaned detail rows.
	SaveWithItem(ctx context.Context, cache *entity.DashboardCache, item *entity.DashboardItem, evictedIDs []uuid.UUID) error

	// ItemsBySource resolves authoritative source IDs to live detail
	// records; tombstones are excluded.
	ItemsBySource(ctx context.Context, ownerID uuid.UUID, sourceIDs []uuid.UUID) ([]*entity.DashboardItem, error)

	// SaveRemovingItems persists the cache and tombstones the detail records
	// in one transaction.
	SaveRemovingItems(ctx context.Context, cache *entity.DashboardCache, itemIDs []uuid.UUID) error

	// SaveItemTombstones records deletions observed before their creation.
	// Sources that already have a row are left untouched.
	SaveItemTombstones(ctx context.Context, items []*entity.DashboardItem) error

	// Save persists only the cache document (snapshot refresh).
	Save(ctx context.Context, cache *entity.DashboardCache) error

	// FindItems returns detail records in the order of the given IDs.
	FindItems(ctx context.Context, itemIDs []uuid.UUID) ([]*entity.DashboardItem, error)

	// DeleteByOwner wipes the owner's cache and detail records.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error
}

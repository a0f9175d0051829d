package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardItem is the backing detail record for one entry of the
// "latest items" list. A Deleted item is a tombstone: its source was
// removed (possibly before its created event arrived) and the cache must
// never list it again.
type DashboardItem struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	SourceID    uuid.UUID
	SourceType  string // "expense" or "income"
	Description string
	Amount      decimal.Decimal
	Category    string
	Deleted     bool
	OccurredAt  time.Time
	CreatedAt   time.Time
}

// DashboardCache is the per-owner dashboard read model: a bounded,
// most-recent-first list of item references plus an embedded snapshot of
// the current-period aggregate.
type DashboardCache struct {
	OwnerID uuid.UUID
	ItemIDs []uuid.UUID // most-recent-first, length <= capacity

	// Embedded current-period aggregate snapshot, refreshed from bulk
	// recompute events under the SnapshotAppliedAt staleness guard.
	SnapshotYear        int
	SnapshotMonth       int
	SnapshotTotalAmount decimal.Decimal
	SnapshotTotalCount  int
	SnapshotAppliedAt   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDashboardCache creates an empty cache for an owner.
func NewDashboardCache(ownerID uuid.UUID) *DashboardCache {
	now := time.Now().UTC()
	return &DashboardCache{
		OwnerID:             ownerID,
		SnapshotTotalAmount: decimal.Zero,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Prepend inserts an item reference at the head of the list and returns the
// references evicted beyond the capacity. Evicted references must be removed
// together with their backing detail records.
func (c *DashboardCache) Prepend(itemID uuid.UUID, capacity int) (evicted []uuid.UUID) {
	c.ItemIDs = append([]uuid.UUID{itemID}, c.ItemIDs...)
	if capacity > 0 && len(c.ItemIDs) > capacity {
		evicted = c.ItemIDs[capacity:]
		c.ItemIDs = c.ItemIDs[:capacity]
	}
	return evicted
}

// RemoveRefs drops the given item references from the list, keeping order.
func (c *DashboardCache) RemoveRefs(itemIDs []uuid.UUID) {
	if len(itemIDs) == 0 {
		return
	}
	drop := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		drop[id] = struct{}{}
	}
	kept := c.ItemIDs[:0]
	for _, id := range c.ItemIDs {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	c.ItemIDs = kept
}

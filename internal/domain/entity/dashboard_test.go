package entity

import (
	"testing"

	"github.com/google/uuid"
)

func TestDashboardCachePrepend(t *testing.T) {
	cache := NewDashboardCache(uuid.New())

	first := uuid.New()
	second := uuid.New()

	cache.Prepend(first, 10)
	cache.Prepend(second, 10)

	if len(cache.ItemIDs) != 2 {
		t.Fatalf("expected 2 items, got %d", len(cache.ItemIDs))
	}
	if cache.ItemIDs[0] != second || cache.ItemIDs[1] != first {
		t.Errorf("expected most-recent-first order")
	}
}

func TestDashboardCachePrependEvictsBeyondCapacity(t *testing.T) {
	cache := NewDashboardCache(uuid.New())

	ids := make([]uuid.UUID, 4)
	for i := range ids {
		ids[i] = uuid.New()
	}

	var evicted []uuid.UUID
	for _, id := range ids {
		evicted = cache.Prepend(id, 3)
	}

	if len(cache.ItemIDs) != 3 {
		t.Fatalf("expected capacity 3 to hold, got %d items", len(cache.ItemIDs))
	}
	if len(evicted) != 1 || evicted[0] != ids[0] {
		t.Errorf("expected oldest item %s evicted, got %v", ids[0], evicted)
	}
	if cache.ItemIDs[0] != ids[3] {
		t.Errorf("expected newest item at head")
	}
}

func TestDashboardCacheRemoveRefs(t *testing.T) {
	cache := NewDashboardCache(uuid.New())

	keep := uuid.New()
	drop := uuid.New()
	cache.Prepend(keep, 10)
	cache.Prepend(drop, 10)

	cache.RemoveRefs([]uuid.UUID{drop})

	if len(cache.ItemIDs) != 1 || cache.ItemIDs[0] != keep {
		t.Errorf("expected only %s to remain, got %v", keep, cache.ItemIDs)
	}
}

func TestDashboardCacheRemoveRefsEmptyIsNoOp(t *testing.T) {
	cache := NewDashboardCache(uuid.New())
	id := uuid.New()
	cache.Prepend(id, 10)

	cache.RemoveRefs(nil)

	if len(cache.ItemIDs) != 1 {
		t.Errorf("expected list untouched, got %v", cache.ItemIDs)
	}
}

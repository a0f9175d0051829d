package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	"github.com/finance-tracker/eventcore/internal/domain/event"
)

func newTestEntry(ownerID uuid.UUID, amount decimal.Decimal) *entity.AggregateEntry {
	return &entity.AggregateEntry{
		SourceID:   uuid.New(),
		OwnerID:    ownerID,
		SourceType: "expense",
		Amount:     amount,
		Category:   "groceries",
		Triggers:   []string{"sale"},
		Year:       2026,
		Month:      8,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestAggregateLoadOrCreateReturnsEmptyAggregate(t *testing.T) {
	db := newTestDB(t)
	repo := NewAggregateRepository(db)
	ownerID := uuid.New()

	agg, err := repo.LoadOrCreate(context.Background(), ownerID, 2026, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !agg.TotalAmount.IsZero() || agg.TotalCount != 0 {
		t.Errorf("expected empty aggregate, got %+v", agg)
	}
	if agg.OwnerID != ownerID || agg.Year != 2026 || agg.Month != 8 {
		t.Errorf("expected aggregate keyed to the requested period")
	}
}

func TestAggregateSaveWithEntryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewAggregateRepository(db)
	ownerID := uuid.New()
	ctx := context.Background()

	agg, err := repo.LoadOrCreate(ctx, ownerID, 2026, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agg.Add(decimal.NewFromFloat(42.50), "groceries", []string{"sale"}, "")

	entry := newTestEntry(ownerID, decimal.NewFromFloat(42.50))
	outbox := stagedEvent(t, event.AggregateRecomputedName, ownerID, event.AggregateRecomputed{})

	if err := repo.SaveWithEntry(ctx, agg, entry, outbox); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := repo.FindEntry(ctx, entry.SourceID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.Deleted {
		t.Error("expected live entry after save")
	}

	reloaded, err := repo.LoadOrCreate(ctx, ownerID, 2026, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reloaded.TotalAmount.Equal(decimal.NewFromFloat(42.50)) {
		t.Errorf("expected total 42.50, got %s", reloaded.TotalAmount)
	}
	if len(reloaded.Categories) != 1 || reloaded.Categories[0].Name != "groceries" {
		t.Errorf("expected groceries breakdown persisted, got %v", reloaded.Categories)
	}
	if len(reloaded.Triggers) != 1 || reloaded.Triggers[0].Name != "sale" {
		t.Errorf("expected sale trigger persisted, got %v", reloaded.Triggers)
	}
}

func TestAggregateSaveWithTombstoneReversesFold(t *testing.T) {
	db := newTestDB(t)
	repo := NewAggregateRepository(db)
	ownerID := uuid.New()
	ctx := context.Background()

	agg, _ := repo.LoadOrCreate(ctx, ownerID, 2026, 8)
	agg.Add(decimal.NewFromFloat(42.50), "groceries", []string{"sale"}, "")
	entry := newTestEntry(ownerID, decimal.NewFromFloat(42.50))
	if err := repo.SaveWithEntry(ctx, agg, entry, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	agg, _ = repo.LoadOrCreate(ctx, ownerID, 2026, 8)
	agg.Remove(decimal.NewFromFloat(42.50), "groceries", []string{"sale"}, "")
	if err := repo.SaveWithTombstone(ctx, agg, entry.SourceID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := repo.FindEntry(ctx, entry.SourceID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || !found.Deleted {
		t.Error("expected entry tombstoned")
	}

	reloaded, _ := repo.LoadOrCreate(ctx, ownerID, 2026, 8)
	if !reloaded.TotalAmount.IsZero() || reloaded.TotalCount != 0 {
		t.Errorf("expected totals back to zero, got %+v", reloaded)
	}
	if len(reloaded.Categories) != 0 {
		t.Errorf("expected breakdown entries cleared, got %v", reloaded.Categories)
	}
}

func TestAggregateSaveTombstoneKeepsExistingRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewAggregateRepository(db)
	ownerID := uuid.New()
	ctx := context.Background()

	// A deletion seen before its creation leaves a tombstone.
	orphan := newTestEntry(ownerID, decimal.NewFromFloat(42.50))
	orphan.Deleted = true
	if err := repo.SaveTombstone(ctx, orphan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found, err := repo.FindEntry(ctx, orphan.SourceID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || !found.Deleted {
		t.Fatal("expected tombstone persisted")
	}

	// Redelivery of the same deletion is absorbed.
	if err := repo.SaveTombstone(ctx, orphan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A folded source wins the conflict and stays live.
	agg, _ := repo.LoadOrCreate(ctx, ownerID, 2026, 8)
	agg.Add(decimal.NewFromFloat(10.00), "dining", nil, "")
	folded := newTestEntry(ownerID, decimal.NewFromFloat(10.00))
	if err := repo.SaveWithEntry(ctx, agg, folded, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	late := *folded
	late.Deleted = true
	if err := repo.SaveTombstone(ctx, &late); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found, _ = repo.FindEntry(ctx, folded.SourceID)
	if found == nil || found.Deleted {
		t.Error("expected existing live entry untouched")
	}
}

func TestAggregateFindByPeriodsSkipsMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewAggregateRepository(db)
	ownerID := uuid.New()
	ctx := context.Background()

	agg, _ := repo.LoadOrCreate(ctx, ownerID, 2026, 8)
	agg.Add(decimal.NewFromFloat(10.00), "dining", nil, "")
	if err := repo.SaveWithEntry(ctx, agg, newTestEntry(ownerID, decimal.NewFromFloat(10.00)), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := repo.FindByPeriods(ctx, ownerID, []adapter.Period{
		{Year: 2026, Month: 8},
		{Year: 2026, Month: 7},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected only the existing period, got %d", len(results))
	}
	if results[0].Month != 8 {
		t.Errorf("expected month 8, got %d", results[0].Month)
	}
}

func TestAggregateDeleteByOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewAggregateRepository(db)
	ownerID := uuid.New()
	ctx := context.Background()

	agg, _ := repo.LoadOrCreate(ctx, ownerID, 2026, 8)
	agg.Add(decimal.NewFromFloat(10.00), "dining", nil, "")
	entry := newTestEntry(ownerID, decimal.NewFromFloat(10.00))
	if err := repo.SaveWithEntry(ctx, agg, entry, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.DeleteByOwner(ctx, ownerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, _ := repo.FindEntry(ctx, entry.SourceID)
	if found != nil {
		t.Error("expected entries wiped")
	}
	reloaded, _ := repo.LoadOrCreate(ctx, ownerID, 2026, 8)
	if !reloaded.TotalAmount.IsZero() {
		t.Errorf("expected aggregate wiped, got total %s", reloaded.TotalAmount)
	}
}

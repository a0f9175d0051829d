package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
)

func testAllotments() map[string]int64 {
	return map[string]int64{"free": 50000, "plus": 500000}
}

func TestEnsureAndRefillCreatesLedgerOnFirstAccess(t *testing.T) {
	db := newTestDB(t)
	repo := NewTokenLedgerRepository(db, "free", testAllotments())
	ownerID := uuid.New()

	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	ledger, err := repo.EnsureAndRefill(context.Background(), ownerID, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledger.Balance != 50000 {
		t.Errorf("expected initial allotment 50000, got %d", ledger.Balance)
	}
	if ledger.PlanID != "free" {
		t.Errorf("expected default plan, got %s", ledger.PlanID)
	}
	if ledger.LastRefillPeriod != "2026-08" {
		t.Errorf("expected period marker 2026-08, got %s", ledger.LastRefillPeriod)
	}
}

func TestEnsureAndRefillAppliesOneRefillPerPeriod(t *testing.T) {
	db := newTestDB(t)
	repo := NewTokenLedgerRepository(db, "free", testAllotments())
	ownerID := uuid.New()
	ctx := context.Background()

	august := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	if _, err := repo.EnsureAndRefill(ctx, ownerID, august); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.Settle(ctx, ownerID, 10000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	september := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	ledger, err := repo.EnsureAndRefill(ctx, ownerID, september)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledger.Balance != 90000 {
		t.Errorf("expected 40000 remaining + 50000 refill, got %d", ledger.Balance)
	}

	again, err := repo.EnsureAndRefill(ctx, ownerID, september.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Balance != 90000 {
		t.Errorf("expected no second refill in the same period, got %d", again.Balance)
	}
}

func TestEnsureAndRefillRejectsUnknownPlan(t *testing.T) {
	db := newTestDB(t)
	repo := NewTokenLedgerRepository(db, "enterprise", testAllotments())

	_, err := repo.EnsureAndRefill(context.Background(), uuid.New(), time.Now().UTC())
	if !errors.Is(err, domainerror.ErrUnknownTokenPlan) {
		t.Errorf("expected ErrUnknownTokenPlan, got %v", err)
	}
}

func TestSettleFloorsAtZero(t *testing.T) {
	db := newTestDB(t)
	repo := NewTokenLedgerRepository(db, "free", testAllotments())
	ownerID := uuid.New()
	ctx := context.Background()

	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	if _, err := repo.EnsureAndRefill(ctx, ownerID, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.Settle(ctx, ownerID, 80000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ledger, err := repo.EnsureAndRefill(ctx, ownerID, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledger.Balance != 0 {
		t.Errorf("expected balance floored at 0, got %d", ledger.Balance)
	}
}

func TestSettleWithoutLedgerIsNoOp(t *testing.T) {
	db := newTestDB(t)
	repo := NewTokenLedgerRepository(db, "free", testAllotments())

	if err := repo.Settle(context.Background(), uuid.New(), 100); err != nil {
		t.Errorf("expected no error for missing ledger, got %v", err)
	}
}

func TestTokenLedgerDeleteByOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewTokenLedgerRepository(db, "free", testAllotments())
	ownerID := uuid.New()
	ctx := context.Background()

	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	if _, err := repo.EnsureAndRefill(ctx, ownerID, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Settle(ctx, ownerID, 10000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.DeleteByOwner(ctx, ownerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A fresh access recreates the ledger from scratch.
	ledger, err := repo.EnsureAndRefill(ctx, ownerID, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledger.Balance != 50000 {
		t.Errorf("expected fresh ledger after delete, got balance %d", ledger.Balance)
	}
}

package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
	"github.com/finance-tracker/eventcore/internal/domain/event"
)

func TestOutboxGetPendingOrdersByCreation(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()
	ownerID := uuid.New()

	older := stagedEvent(t, event.ExpenseCreatedName, ownerID, event.ExpenseCreated{})
	older.CreatedAt = time.Now().UTC().Add(-time.Minute)
	newer := stagedEvent(t, event.IncomeCreatedName, ownerID, event.IncomeCreated{})

	for _, msg := range []*entity.OutboxMessage{newer, older} {
		if err := repo.Update(ctx, msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	pending, err := repo.GetPending(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending messages, got %d", len(pending))
	}
	if pending[0].ID != older.ID {
		t.Errorf("expected oldest message first")
	}
}

func TestOutboxGetPendingSkipsPublished(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()
	ownerID := uuid.New()

	msg := stagedEvent(t, event.ExpenseCreatedName, ownerID, event.ExpenseCreated{})
	if err := repo.Update(ctx, msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg.MarkPublished()
	if err := repo.Update(ctx, msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending, err := repo.GetPending(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending messages, got %d", len(pending))
	}
}

func TestOutboxGetPendingHonorsLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()
	ownerID := uuid.New()

	for i := 0; i < 5; i++ {
		msg := stagedEvent(t, event.ExpenseCreatedName, ownerID, event.ExpenseCreated{})
		if err := repo.Update(ctx, msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	pending, err := repo.GetPending(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 3 {
		t.Errorf("expected batch of 3, got %d", len(pending))
	}
}

func TestOutboxUpdatePersistsFailureState(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	msg := stagedEvent(t, event.ExpenseCreatedName, uuid.New(), event.ExpenseCreated{})
	if err := repo.Update(ctx, msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg.MarkFailed(errors.New("broker unreachable"), 1)
	if err := repo.Update(ctx, msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending, err := repo.GetPending(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected permanently failed message parked, got %d pending", len(pending))
	}
}

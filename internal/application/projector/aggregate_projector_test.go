package projector

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/eventcore/internal/domain/event"
)

func testConfig() Config {
	return Config{
		ConsumerGroup: "financial-data",
		MaxAttempts:   2,
		BaseDelay:     time.Millisecond,
	}
}

func expenseCreatedEnvelope(t *testing.T, rec event.ExpenseRecord) event.Envelope {
	t.Helper()
	env, err := event.NewEnvelope(event.ExpenseCreatedName, rec.OwnerID, event.ExpenseCreated{Expense: rec})
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}
	return env
}

func expenseDeletedEnvelope(t *testing.T, sagaID uuid.UUID, recs []event.ExpenseRecord) event.Envelope {
	t.Helper()
	env, err := event.NewEnvelope(event.ExpenseDeletedName, recs[0].OwnerID, event.ExpenseDeleted{
		SagaID:    sagaID,
		Expenses:  recs,
		DeletedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}
	return env
}

func testExpenseRecord(ownerID uuid.UUID) event.ExpenseRecord {
	return event.ExpenseRecord{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Description: "groceries run",
		Amount:      decimal.NewFromFloat(42.50),
		Category:    "groceries",
		Triggers:    []string{"sale"},
		Mood:        "stressed",
		OccurredAt:  time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestAggregateProjectorFoldsExpenseCreated(t *testing.T) {
	repo := newFakeAggregateRepo()
	publisher := &capturePublisher{}
	p := NewAggregateProjector(repo, publisher, testConfig())

	ownerID := uuid.New()
	rec := testExpenseRecord(ownerID)

	if err := p.HandleExpenseCreated(context.Background(), expenseCreatedEnvelope(t, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	agg := repo.aggs[aggKey(ownerID, 2026, 8)]
	if agg == nil {
		t.Fatal("expected aggregate created")
	}
	if !agg.TotalAmount.Equal(decimal.NewFromFloat(42.50)) || agg.TotalCount != 1 {
		t.Errorf("expected totals 42.50/1, got %s/%d", agg.TotalAmount, agg.TotalCount)
	}
	if _, ok := repo.entries[rec.ID]; !ok {
		t.Error("expected dedup entry recorded")
	}
	if len(repo.staged) != 1 || repo.staged[0].EventName != event.AggregateRecomputedName {
		t.Errorf("expected one staged recompute event, got %v", repo.staged)
	}
}

func TestAggregateProjectorRedeliveryIsNoOp(t *testing.T) {
	logs := captureLogs(t)
	repo := newFakeAggregateRepo()
	p := NewAggregateProjector(repo, &capturePublisher{}, testConfig())

	ownerID := uuid.New()
	rec := testExpenseRecord(ownerID)
	env := expenseCreatedEnvelope(t, rec)

	for i := 0; i < 3; i++ {
		if err := p.HandleExpenseCreated(context.Background(), env); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	agg := repo.aggs[aggKey(ownerID, 2026, 8)]
	if agg.TotalCount != 1 {
		t.Errorf("expected one fold despite redelivery, got count %d", agg.TotalCount)
	}
	if len(repo.staged) != 1 {
		t.Errorf("expected one staged event, got %d", len(repo.staged))
	}
	if !logs.has(slog.LevelInfo, "skipping already folded source") {
		t.Error("expected absorbed redelivery noted at info level")
	}
}

func TestAggregateProjectorUnfoldsExpenseDeleted(t *testing.T) {
	repo := newFakeAggregateRepo()
	p := NewAggregateProjector(repo, &capturePublisher{}, testConfig())
	ctx := context.Background()

	ownerID := uuid.New()
	rec := testExpenseRecord(ownerID)
	if err := p.HandleExpenseCreated(ctx, expenseCreatedEnvelope(t, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env := expenseDeletedEnvelope(t, uuid.New(), []event.ExpenseRecord{rec})
	if err := p.HandleExpenseDeleted(ctx, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	agg := repo.aggs[aggKey(ownerID, 2026, 8)]
	if !agg.TotalAmount.IsZero() || agg.TotalCount != 0 {
		t.Errorf("expected totals reversed to zero, got %s/%d", agg.TotalAmount, agg.TotalCount)
	}
	if len(agg.Categories) != 0 || len(agg.Triggers) != 0 || len(agg.Moods) != 0 {
		t.Error("expected zero-count breakdown entries removed")
	}
	entry := repo.entries[rec.ID]
	if entry == nil || !entry.Deleted {
		t.Error("expected dedup entry tombstoned")
	}

	// A redelivered deleted event finds the tombstone and subtracts nothing.
	if err := p.HandleExpenseDeleted(ctx, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agg = repo.aggs[aggKey(ownerID, 2026, 8)]
	if !agg.TotalAmount.IsZero() || agg.TotalCount != 0 {
		t.Errorf("expected redelivery to subtract nothing, got %s/%d", agg.TotalAmount, agg.TotalCount)
	}
}

func TestAggregateProjectorDeleteBeforeCreateEndsAtZero(t *testing.T) {
	repo := newFakeAggregateRepo()
	p := NewAggregateProjector(repo, &capturePublisher{}, testConfig())
	ctx := context.Background()

	ownerID := uuid.New()
	rec := testExpenseRecord(ownerID)

	// The deleted event overtakes its own created event.
	deleted := expenseDeletedEnvelope(t, uuid.New(), []event.ExpenseRecord{rec})
	if err := p.HandleExpenseDeleted(ctx, deleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := repo.entries[rec.ID]
	if entry == nil || !entry.Deleted {
		t.Fatal("expected tombstone for the never-folded source")
	}
	if len(repo.staged) != 0 {
		t.Errorf("expected no recompute for an untouched aggregate, got %d", len(repo.staged))
	}

	// The late created event must not resurrect the deleted record.
	if err := p.HandleExpenseCreated(ctx, expenseCreatedEnvelope(t, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg, ok := repo.aggs[aggKey(ownerID, 2026, 8)]; ok {
		if !agg.TotalAmount.IsZero() || agg.TotalCount != 0 || len(agg.Categories) != 0 {
			t.Errorf("expected totals at zero with no breakdown, got %s/%d %v",
				agg.TotalAmount, agg.TotalCount, agg.Categories)
		}
	}
	if len(repo.staged) != 0 {
		t.Errorf("expected no fold for a tombstoned source, got %d staged events", len(repo.staged))
	}
}

func TestAggregateProjectorPublishesFailureWhenRetriesExhausted(t *testing.T) {
	repo := newFakeAggregateRepo()
	repo.findEntryErr = errors.New("store unavailable")
	publisher := &capturePublisher{}
	p := NewAggregateProjector(repo, publisher, testConfig())

	sagaID := uuid.New()
	rec := testExpenseRecord(uuid.New())
	env := expenseDeletedEnvelope(t, sagaID, []event.ExpenseRecord{rec})

	// The failure event replaces the error: the message is acknowledged and
	// the coordinator takes over.
	if err := p.HandleExpenseDeleted(context.Background(), env); err != nil {
		t.Fatalf("expected failure to be absorbed, got %v", err)
	}

	failures := publisher.byName(event.ExpenseDeletionFailedName)
	if len(failures) != 1 {
		t.Fatalf("expected one deletion-failed event, got %d", len(failures))
	}

	payload, err := event.Decode(failures[0])
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	failed := payload.(*event.ExpenseDeletionFailed)
	if failed.SagaID != sagaID {
		t.Errorf("expected saga %s, got %s", sagaID, failed.SagaID)
	}
	if failed.ConsumerGroup != "financial-data" {
		t.Errorf("expected reporting consumer group, got %s", failed.ConsumerGroup)
	}
	if len(failed.ExpenseIDs) != 1 || failed.ExpenseIDs[0] != rec.ID {
		t.Errorf("expected failed expense IDs, got %v", failed.ExpenseIDs)
	}
}

func TestAggregateProjectorReturnsErrorWhenFailurePublishFails(t *testing.T) {
	repo := newFakeAggregateRepo()
	repo.findEntryErr = errors.New("store unavailable")
	publisher := &capturePublisher{publishErr: errors.New("broker down")}
	p := NewAggregateProjector(repo, publisher, testConfig())

	rec := testExpenseRecord(uuid.New())
	env := expenseDeletedEnvelope(t, uuid.New(), []event.ExpenseRecord{rec})

	// With the failure event unpublishable the message must stay
	// unacknowledged so the broker redelivers it.
	if err := p.HandleExpenseDeleted(context.Background(), env); err == nil {
		t.Error("expected error to trigger redelivery")
	}
}

func TestAggregateProjectorAccountClosedWipesOwner(t *testing.T) {
	repo := newFakeAggregateRepo()
	p := NewAggregateProjector(repo, &capturePublisher{}, testConfig())
	ctx := context.Background()

	ownerID := uuid.New()
	rec := testExpenseRecord(ownerID)
	if err := p.HandleExpenseCreated(ctx, expenseCreatedEnvelope(t, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env, err := event.NewEnvelope(event.AccountClosedName, ownerID, event.AccountClosed{
		OwnerID:  ownerID,
		ClosedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}

	if err := p.HandleAccountClosed(ctx, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.aggs) != 0 || len(repo.entries) != 0 {
		t.Error("expected owner data wiped")
	}
}

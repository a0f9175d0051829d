package event

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
)

func TestNewEnvelopeStampsIdentityAndTime(t *testing.T) {
	ownerID := uuid.New()

	env, err := NewEnvelope(ExpenseCreatedName, ownerID, ExpenseCreated{
		Expense: ExpenseRecord{ID: uuid.New(), OwnerID: ownerID, Amount: decimal.NewFromFloat(9.99)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.EventID == uuid.Nil {
		t.Error("expected a fresh event ID")
	}
	if env.EventName != ExpenseCreatedName {
		t.Errorf("expected event name %s, got %s", ExpenseCreatedName, env.EventName)
	}
	if env.OwnerID != ownerID {
		t.Errorf("expected owner %s, got %s", ownerID, env.OwnerID)
	}
	if env.OccurredAt.IsZero() {
		t.Error("expected occurredAt stamped")
	}
}

func TestDecodeExpenseCreated(t *testing.T) {
	ownerID := uuid.New()
	expenseID := uuid.New()

	env, err := NewEnvelope(ExpenseCreatedName, ownerID, ExpenseCreated{
		Expense: ExpenseRecord{
			ID:          expenseID,
			OwnerID:     ownerID,
			Description: "lunch",
			Amount:      decimal.NewFromFloat(12.30),
			Category:    "dining",
			Triggers:    []string{"impulse"},
			Mood:        "happy",
			OccurredAt:  time.Now().UTC(),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload, err := Decode(env)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	created, ok := payload.(*ExpenseCreated)
	if !ok {
		t.Fatalf("expected *ExpenseCreated, got %T", payload)
	}
	if created.Expense.ID != expenseID {
		t.Errorf("expected expense ID %s, got %s", expenseID, created.Expense.ID)
	}
	if !created.Expense.Amount.Equal(decimal.NewFromFloat(12.30)) {
		t.Errorf("expected amount 12.30, got %s", created.Expense.Amount)
	}
}

func TestDecodeRejectsUnknownEventName(t *testing.T) {
	env := Envelope{
		EventID:   uuid.New(),
		EventName: "expense.renamed",
		OwnerID:   uuid.New(),
		Payload:   []byte(`{}`),
	}

	_, err := Decode(env)
	if !errors.Is(err, domainerror.ErrUnknownEventName) {
		t.Errorf("expected ErrUnknownEventName, got %v", err)
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	env := Envelope{
		EventID:   uuid.New(),
		EventName: ExpenseCreatedName,
		OwnerID:   uuid.New(),
		Payload:   []byte(`{not json`),
	}

	_, err := Decode(env)
	if !errors.Is(err, domainerror.ErrMalformedEventPayload) {
		t.Errorf("expected ErrMalformedEventPayload, got %v", err)
	}
}

func TestDecodeAggregateRecomputedSnapshot(t *testing.T) {
	ownerID := uuid.New()
	computedAt := time.Now().UTC().Truncate(time.Second)

	env, err := NewEnvelope(AggregateRecomputedName, ownerID, AggregateRecomputed{
		Snapshot: AggregateSnapshot{
			OwnerID:     ownerID,
			Year:        2026,
			Month:       8,
			TotalAmount: decimal.NewFromFloat(120.00),
			TotalCount:  4,
			ComputedAt:  computedAt,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload, err := Decode(env)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	recomputed := payload.(*AggregateRecomputed)
	if recomputed.Snapshot.Year != 2026 || recomputed.Snapshot.Month != 8 {
		t.Errorf("expected period 2026-08, got %d-%d", recomputed.Snapshot.Year, recomputed.Snapshot.Month)
	}
	if !recomputed.Snapshot.ComputedAt.Equal(computedAt) {
		t.Errorf("expected computedAt %s, got %s", computedAt, recomputed.Snapshot.ComputedAt)
	}
}

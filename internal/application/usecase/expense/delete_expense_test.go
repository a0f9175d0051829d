package expense

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
	"github.com/finance-tracker/eventcore/internal/domain/event"
)

func storedExpense(t *testing.T, uc *CreateExpenseUseCase, ownerID uuid.UUID, key string) uuid.UUID {
	t.Helper()
	input := validCreateInput(ownerID)
	input.IdempotencyKey = key
	output, err := uc.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("failed to seed expense: %v", err)
	}
	return output.Expense.ID
}

func TestDeleteExpensesStartsSaga(t *testing.T) {
	repo := newFakeExpenseRepo()
	createUC := NewCreateExpenseUseCase(repo, newFakeLedger())
	uc := NewDeleteExpensesUseCase(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	first := storedExpense(t, createUC, ownerID, "seed-1")
	second := storedExpense(t, createUC, ownerID, "seed-2")

	output, err := uc.Execute(ctx, DeleteExpensesInput{
		OwnerID:    ownerID,
		ExpenseIDs: []uuid.UUID{first, second},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.DeletedCount != 2 {
		t.Errorf("expected 2 flagged rows, got %d", output.DeletedCount)
	}
	if len(repo.sagas) != 1 {
		t.Fatalf("expected one saga recorded, got %d", len(repo.sagas))
	}
	saga := repo.sagas[0]
	if saga.ID != output.SagaID || saga.State != entity.SagaStateInitiated {
		t.Errorf("expected initiated saga %s, got %s in %s", output.SagaID, saga.ID, saga.State)
	}

	// The staged deleted event carries the saga so the relay can advance it
	// after publication.
	staged := repo.staged[len(repo.staged)-1]
	if staged.EventName != event.ExpenseDeletedName {
		t.Errorf("expected staged %s, got %s", event.ExpenseDeletedName, staged.EventName)
	}
	if staged.SagaID == nil || *staged.SagaID != saga.ID {
		t.Error("expected staged event linked to the saga")
	}

	if live, _ := repo.FindByIDs(ctx, []uuid.UUID{first, second}, ownerID); len(live) != 0 {
		t.Errorf("expected rows hidden after soft delete, got %d live", len(live))
	}
}

func TestDeleteExpensesRejectsEmptyIDs(t *testing.T) {
	uc := NewDeleteExpensesUseCase(newFakeExpenseRepo())

	_, err := uc.Execute(context.Background(), DeleteExpensesInput{OwnerID: uuid.New()})
	if !errors.Is(err, domainerror.ErrEmptyExpenseIDs) {
		t.Errorf("expected ErrEmptyExpenseIDs, got %v", err)
	}
}

func TestDeleteExpensesRejectsUnknownIDs(t *testing.T) {
	repo := newFakeExpenseRepo()
	createUC := NewCreateExpenseUseCase(repo, newFakeLedger())
	uc := NewDeleteExpensesUseCase(repo)

	ownerID := uuid.New()
	known := storedExpense(t, createUC, ownerID, "seed-1")

	_, err := uc.Execute(context.Background(), DeleteExpensesInput{
		OwnerID:    ownerID,
		ExpenseIDs: []uuid.UUID{known, uuid.New()},
	})
	if !errors.Is(err, domainerror.ErrExpenseIDsNotFound) {
		t.Errorf("expected ErrExpenseIDsNotFound, got %v", err)
	}
	if len(repo.sagas) != 0 {
		t.Error("expected no saga for a rejected delete")
	}
}

func TestDeleteExpensesScopedToOwner(t *testing.T) {
	repo := newFakeExpenseRepo()
	createUC := NewCreateExpenseUseCase(repo, newFakeLedger())
	uc := NewDeleteExpensesUseCase(repo)

	victimExpense := storedExpense(t, createUC, uuid.New(), "seed-1")

	_, err := uc.Execute(context.Background(), DeleteExpensesInput{
		OwnerID:    uuid.New(),
		ExpenseIDs: []uuid.UUID{victimExpense},
	})
	if !errors.Is(err, domainerror.ErrExpenseIDsNotFound) {
		t.Errorf("expected another owner's rows to look absent, got %v", err)
	}
}

func TestDeleteExpensesDeduplicatesIDs(t *testing.T) {
	repo := newFakeExpenseRepo()
	createUC := NewCreateExpenseUseCase(repo, newFakeLedger())
	uc := NewDeleteExpensesUseCase(repo)

	ownerID := uuid.New()
	id := storedExpense(t, createUC, ownerID, "seed-1")

	output, err := uc.Execute(context.Background(), DeleteExpensesInput{
		OwnerID:    ownerID,
		ExpenseIDs: []uuid.UUID{id, id, id},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.DeletedCount != 1 {
		t.Errorf("expected one flagged row for repeated IDs, got %d", output.DeletedCount)
	}
}

func TestDeleteAlreadyDeletedExpenseIsNotFound(t *testing.T) {
	repo := newFakeExpenseRepo()
	createUC := NewCreateExpenseUseCase(repo, newFakeLedger())
	uc := NewDeleteExpensesUseCase(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	id := storedExpense(t, createUC, ownerID, "seed-1")

	input := DeleteExpensesInput{OwnerID: ownerID, ExpenseIDs: []uuid.UUID{id}}
	if _, err := uc.Execute(ctx, input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := uc.Execute(ctx, input)
	if !errors.Is(err, domainerror.ErrExpenseIDsNotFound) {
		t.Errorf("expected second delete to report not found, got %v", err)
	}
}

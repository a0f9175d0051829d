package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
	"github.com/finance-tracker/eventcore/internal/domain/event"
)

// ExpenseOutput is the serializable use case representation of an expense.
// It is also the shape stored in the idempotency ledger.
type ExpenseOutput struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"ownerId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Triggers    []string        `json:"triggers,omitempty"`
	Mood        string          `json:"mood,omitempty"`
	OccurredAt  time.Time       `json:"occurredAt"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toExpenseOutput(expense *entity.Expense) *ExpenseOutput {
	return &ExpenseOutput{
		ID:          expense.ID,
		OwnerID:     expense.OwnerID,
		Description: expense.Description,
		Amount:      expense.Amount,
		Category:    expense.Category,
		Triggers:    expense.Triggers,
		Mood:        expense.Mood,
		OccurredAt:  expense.OccurredAt,
		CreatedAt:   expense.CreatedAt,
	}
}

func expenseRecord(expense *entity.Expense) event.ExpenseRecord {
	return event.ExpenseRecord{
		ID:          expense.ID,
		OwnerID:     expense.OwnerID,
		Description: expense.Description,
		Amount:      expense.Amount,
		Category:    expense.Category,
		Triggers:    expense.Triggers,
		Mood:        expense.Mood,
		OccurredAt:  expense.OccurredAt,
	}
}

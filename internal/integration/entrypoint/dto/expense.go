package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateExpenseRequest represents the request body for expense creation.
// The idempotency key travels in the Idempotency-Key header, not the body.
type CreateExpenseRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Triggers    []string        `json:"triggers"`
	Mood        string          `json:"mood"`
	OccurredAt  time.Time       `json:"occurredAt" binding:"required"`
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Triggers    []string        `json:"triggers,omitempty"`
	Mood        string          `json:"mood,omitempty"`
	OccurredAt  time.Time       `json:"occurredAt"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// DeleteExpensesRequest represents the request body for expense deletion.
type DeleteExpensesRequest struct {
	ExpenseIDs []uuid.UUID `json:"expenseIds" binding:"required"`
}

// DeleteExpensesResponse represents the response for expense deletion.
type DeleteExpensesResponse struct {
	SagaID       uuid.UUID `json:"sagaId"`
	DeletedCount int64     `json:"deletedCount"`
}

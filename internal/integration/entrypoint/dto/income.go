package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateIncomeRequest represents the request body for income creation.
type CreateIncomeRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	OccurredAt  time.Time       `json:"occurredAt" binding:"required"`
}

// IncomeResponse represents an income in API responses.
type IncomeResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	OccurredAt  time.Time       `json:"occurredAt"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// DeleteIncomesRequest represents the request body for income deletion.
type DeleteIncomesRequest struct {
	IncomeIDs []uuid.UUID `json:"incomeIds" binding:"required"`
}

// DeleteIncomesResponse represents the response for income deletion.
type DeleteIncomesResponse struct {
	SagaID       uuid.UUID `json:"sagaId"`
	DeletedCount int64     `json:"deletedCount"`
}

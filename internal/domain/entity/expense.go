// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense represents an authoritative expense record owned by this service.
type Expense struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Description string
	Amount      decimal.Decimal
	Category    string
	Triggers    []string // zero or more spending triggers (e.g. "impulse", "sale")
	Mood        string
	OccurredAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time // Soft-delete support
}

// NewExpense creates a new Expense entity.
func NewExpense(
	ownerID uuid.UUID,
	description string,
	amount decimal.Decimal,
	category string,
	triggers []string,
	mood string,
	occurredAt time.Time,
) *Expense {
	now := time.Now().UTC()

	return &Expense{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Description: description,
		Amount:      amount,
		Category:    category,
		Triggers:    triggers,
		Mood:        mood,
		OccurredAt:  occurredAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Income represents an authoritative income record owned by this service.
type Income struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Description string
	Amount      decimal.Decimal
	Category    string
	OccurredAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// NewIncome creates a new Income entity.
func NewIncome(
	ownerID uuid.UUID,
	description string,
	amount decimal.Decimal,
	category string,
	occurredAt time.Time,
) *Income {
	now := time.Now().UTC()

	return &Income{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Description: description,
		Amount:      amount,
		Category:    category,
		OccurredAt:  occurredAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

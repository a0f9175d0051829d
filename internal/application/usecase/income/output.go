package income

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
	"github.com/finance-tracker/eventcore/internal/domain/event"
)

// IncomeOutput is the serializable use case representation of an income.
type IncomeOutput struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"ownerId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	OccurredAt  time.Time       `json:"occurredAt"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toIncomeOutput(income *entity.Income) *IncomeOutput {
	return &IncomeOutput{
		ID:          income.ID,
		OwnerID:     income.OwnerID,
		Description: income.Description,
		Amount:      income.Amount,
		Category:    income.Category,
		OccurredAt:  income.OccurredAt,
		CreatedAt:   income.CreatedAt,
	}
}

func incomeRecord(income *entity.Income) event.IncomeRecord {
	return event.IncomeRecord{
		ID:          income.ID,
		OwnerID:     income.OwnerID,
		Description: income.Description,
		Amount:      income.Amount,
		Category:    income.Category,
		OccurredAt:  income.OccurredAt,
	}
}

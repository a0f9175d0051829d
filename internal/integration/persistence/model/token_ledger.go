package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// TokenLedgerModel represents the token_ledgers table.
type TokenLedgerModel struct {
	OwnerID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Balance          int64     `gorm:"not null"`
	PlanID           string    `gorm:"type:varchar(20);not null"`
	LastRefillPeriod string    `gorm:"type:varchar(7);not null"` // "YYYY-MM" of the last refill
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for the TokenLedgerModel.
func (TokenLedgerModel) TableName() string {
	return "token_ledgers"
}

// ToEntity converts a TokenLedgerModel to a domain TokenLedger.
func (m *TokenLedgerModel) ToEntity() *entity.TokenLedger {
	return &entity.TokenLedger{
		OwnerID:          m.OwnerID,
		Balance:          m.Balance,
		PlanID:           m.PlanID,
		LastRefillPeriod: m.LastRefillPeriod,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// TokenLedgerFromEntity creates a TokenLedgerModel from a domain entity.
func TokenLedgerFromEntity(ledger *entity.TokenLedger) *TokenLedgerModel {
	return &TokenLedgerModel{
		OwnerID:          ledger.OwnerID,
		Balance:          ledger.Balance,
		PlanID:           ledger.PlanID,
		LastRefillPeriod: ledger.LastRefillPeriod,
		CreatedAt:        ledger.CreatedAt,
		UpdatedAt:        ledger.UpdatedAt,
	}
}

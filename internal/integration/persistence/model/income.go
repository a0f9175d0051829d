package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// IncomeModel represents the incomes table in the database.
type IncomeModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(255);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Category    string          `gorm:"type:varchar(100);not null"`
	OccurredAt  time.Time       `gorm:"not null;index"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for the IncomeModel.
func (IncomeModel) TableName() string {
	return "incomes"
}

// ToEntity converts an IncomeModel to a domain Income entity.
func (m *IncomeModel) ToEntity() *entity.Income {
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}

	return &entity.Income{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Description: m.Description,
		Amount:      m.Amount,
		Category:    m.Category,
		OccurredAt:  m.OccurredAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		DeletedAt:   deletedAt,
	}
}

// IncomeFromEntity creates an IncomeModel from a domain Income entity.
func IncomeFromEntity(income *entity.Income) *IncomeModel {
	var deletedAt gorm.DeletedAt
	if income.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *income.DeletedAt, Valid: true}
	}

	return &IncomeModel{
		ID:          income.ID,
		OwnerID:     income.OwnerID,
		Description: income.Description,
		Amount:      income.Amount,
		Category:    income.Category,
		OccurredAt:  income.OccurredAt,
		CreatedAt:   income.CreatedAt,
		UpdatedAt:   income.UpdatedAt,
		DeletedAt:   deletedAt,
	}
}

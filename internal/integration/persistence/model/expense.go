// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// ExpenseModel represents the expenses table in the database.
type ExpenseModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(255);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Category    string          `gorm:"type:varchar(100);not null;index"`
	Triggers    []string        `gorm:"serializer:json;type:text"`
	Mood        string          `gorm:"type:varchar(50)"`
	OccurredAt  time.Time       `gorm:"not null;index"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"` // Soft-delete support
}

// TableName returns the table name for the ExpenseModel.
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToEntity converts an ExpenseModel to a domain Expense entity.
func (m *ExpenseModel) ToEntity() *entity.Expense {
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}

	return &entity.Expense{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Description: m.Description,
		Amount:      m.Amount,
		Category:    m.Category,
		Triggers:    m.Triggers,
		Mood:        m.Mood,
		OccurredAt:  m.OccurredAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		DeletedAt:   deletedAt,
	}
}

// ExpenseFromEntity creates an ExpenseModel from a domain Expense entity.
func ExpenseFromEntity(expense *entity.Expense) *ExpenseModel {
	var deletedAt gorm.DeletedAt
	if expense.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *expense.DeletedAt, Valid: true}
	}

	return &ExpenseModel{
		ID:          expense.ID,
		OwnerID:     expense.OwnerID,
		Description: expense.Description,
		Amount:      expense.Amount,
		Category:    expense.Category,
		Triggers:    expense.Triggers,
		Mood:        expense.Mood,
		OccurredAt:  expense.OccurredAt,
		CreatedAt:   expense.CreatedAt,
		UpdatedAt:   expense.UpdatedAt,
		DeletedAt:   deletedAt,
	}
}

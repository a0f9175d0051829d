package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// MonthlyAggregateModel represents the monthly_aggregates table.
// Breakdown dimensions are stored as JSON documents; the row is only ever
// mutated by its owning projector, so read-modify-write is safe.
type MonthlyAggregateModel struct {
	OwnerID       uuid.UUID               `gorm:"type:uuid;primaryKey"`
	Year          int                     `gorm:"primaryKey"`
	Month         int                     `gorm:"primaryKey"`
	TotalAmount   decimal.Decimal         `gorm:"type:decimal(15,2);not null"`
	TotalCount    int                     `gorm:"not null"`
	Categories    []entity.BreakdownEntry `gorm:"serializer:json;type:text"`
	Triggers      []entity.BreakdownEntry `gorm:"serializer:json;type:text"`
	Moods         []entity.BreakdownEntry `gorm:"serializer:json;type:text"`
	LastAppliedAt time.Time               `gorm:"not null"`
	CreatedAt     time.Time               `gorm:"not null"`
	UpdatedAt     time.Time               `gorm:"not null"`
}

// TableName returns the table name for the MonthlyAggregateModel.
func (MonthlyAggregateModel) TableName() string {
	return "monthly_aggregates"
}

// ToEntity converts a MonthlyAggregateModel to a domain MonthlyAggregate.
func (m *MonthlyAggregateModel) ToEntity() *entity.MonthlyAggregate {
	return &entity.MonthlyAggregate{
		OwnerID:       m.OwnerID,
		Year:          m.Year,
		Month:         m.Month,
		TotalAmount:   m.TotalAmount,
		TotalCount:    m.TotalCount,
		Categories:    m.Categories,
		Triggers:      m.Triggers,
		Moods:         m.Moods,
		LastAppliedAt: m.LastAppliedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// AggregateFromEntity creates a MonthlyAggregateModel from a domain entity.
func AggregateFromEntity(agg *entity.MonthlyAggregate) *MonthlyAggregateModel {
	return &MonthlyAggregateModel{
		OwnerID:       agg.OwnerID,
		Year:          agg.Year,
		Month:         agg.Month,
		TotalAmount:   agg.TotalAmount,
		TotalCount:    agg.TotalCount,
		Categories:    agg.Categories,
		Triggers:      agg.Triggers,
		Moods:         agg.Moods,
		LastAppliedAt: agg.LastAppliedAt,
		CreatedAt:     agg.CreatedAt,
		UpdatedAt:     agg.UpdatedAt,
	}
}

// AggregateEntryModel represents the aggregate_entries table: one row per
// seen source entity. A live row is the projector's dedup check; a deleted
// row is a tombstone blocking reordered created events.
type AggregateEntryModel struct {
	SourceID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceType string          `gorm:"type:varchar(20);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Category   string          `gorm:"type:varchar(100)"`
	Triggers   []string        `gorm:"serializer:json;type:text"`
	Mood       string          `gorm:"type:varchar(50)"`
	Year       int             `gorm:"not null"`
	Month      int             `gorm:"not null"`
	Deleted    bool            `gorm:"not null;default:false"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for the AggregateEntryModel.
func (AggregateEntryModel) TableName() string {
	return "aggregate_entries"
}

// ToEntity converts an AggregateEntryModel to a domain AggregateEntry.
func (m *AggregateEntryModel) ToEntity() *entity.AggregateEntry {
	return &entity.AggregateEntry{
		SourceID:   m.SourceID,
		OwnerID:    m.OwnerID,
		SourceType: m.SourceType,
		Amount:     m.Amount,
		Category:   m.Category,
		Triggers:   m.Triggers,
		Mood:       m.Mood,
		Year:       m.Year,
		Month:      m.Month,
		Deleted:    m.Deleted,
		CreatedAt:  m.CreatedAt,
	}
}

// AggregateEntryFromEntity creates an AggregateEntryModel from a domain entity.
func AggregateEntryFromEntity(entry *entity.AggregateEntry) *AggregateEntryModel {
	return &AggregateEntryModel{
		SourceID:   entry.SourceID,
		OwnerID:    entry.OwnerID,
		SourceType: entry.SourceType,
		Amount:     entry.Amount,
		Category:   entry.Category,
		Triggers:   entry.Triggers,
		Mood:       entry.Mood,
		Year:       entry.Year,
		Month:      entry.Month,
		Deleted:    entry.Deleted,
		CreatedAt:  entry.CreatedAt,
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// AdviceLogModel represents the advice_logs table. It uses a native
// PostgreSQL array column and is not part of the SQLite test schema.
type AdviceLogModel struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OwnerID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Question   string         `gorm:"type:text;not null"`
	Answer     string         `gorm:"type:text;not null"`
	Topics     pq.StringArray `gorm:"type:text[]"`
	TokensUsed int64          `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"not null"`
}

// TableName returns the table name for the AdviceLogModel.
func (AdviceLogModel) TableName() string {
	return "advice_logs"
}

// ToEntity converts an AdviceLogModel to a domain AdviceLog.
func (m *AdviceLogModel) ToEntity() *entity.AdviceLog {
	return &entity.AdviceLog{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		Question:   m.Question,
		Answer:     m.Answer,
		Topics:     m.Topics,
		TokensUsed: m.TokensUsed,
		CreatedAt:  m.CreatedAt,
	}
}

// AdviceLogFromEntity creates an AdviceLogModel from a domain entity.
func AdviceLogFromEntity(log *entity.AdviceLog) *AdviceLogModel {
	return &AdviceLogModel{
		ID:         log.ID,
		OwnerID:    log.OwnerID,
		Question:   log.Question,
		Answer:     log.Answer,
		Topics:     pq.StringArray(log.Topics),
		TokensUsed: log.TokensUsed,
		CreatedAt:  log.CreatedAt,
	}
}

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// OutboxMessageModel represents the outbox_messages table. Rows are written
// in the same transaction as the state change that produced the event.
type OutboxMessageModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EventID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	EventName   string     `gorm:"type:varchar(100);not null"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null"`
	OccurredAt  time.Time  `gorm:"not null"`
	Payload     []byte     `gorm:"type:text;not null"`
	SagaID      *uuid.UUID `gorm:"type:uuid"`
	Status      string     `gorm:"type:varchar(20);not null;index"`
	Attempts    int        `gorm:"not null"`
	LastError   string     `gorm:"type:varchar(500)"`
	CreatedAt   time.Time  `gorm:"not null;index"`
	PublishedAt *time.Time
}

// TableName returns the table name for the OutboxMessageModel.
func (OutboxMessageModel) TableName() string {
	return "outbox_messages"
}

// ToEntity converts an OutboxMessageModel to a domain OutboxMessage.
func (m *OutboxMessageModel) ToEntity() *entity.OutboxMessage {
	return &entity.OutboxMessage{
		ID:          m.ID,
		EventID:     m.EventID,
		EventName:   m.EventName,
		OwnerID:     m.OwnerID,
		OccurredAt:  m.OccurredAt,
		Payload:     m.Payload,
		SagaID:      m.SagaID,
		Status:      entity.OutboxStatus(m.Status),
		Attempts:    m.Attempts,
		LastError:   m.LastError,
		CreatedAt:   m.CreatedAt,
		PublishedAt: m.PublishedAt,
	}
}

// OutboxFromEntity creates an OutboxMessageModel from a domain entity.
func OutboxFromEntity(msg *entity.OutboxMessage) *OutboxMessageModel {
	return &OutboxMessageModel{
		ID:          msg.ID,
		EventID:     msg.EventID,
		EventName:   msg.EventName,
		OwnerID:     msg.OwnerID,
		OccurredAt:  msg.OccurredAt,
		Payload:     msg.Payload,
		SagaID:      msg.SagaID,
		Status:      string(msg.Status),
		Attempts:    msg.Attempts,
		LastError:   msg.LastError,
		CreatedAt:   msg.CreatedAt,
		PublishedAt: msg.PublishedAt,
	}
}

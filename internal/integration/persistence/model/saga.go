package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// DeletionSagaModel represents the deletion_sagas table.
type DeletionSagaModel struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	EntityType string      `gorm:"type:varchar(20);not null"`
	EntityIDs  []uuid.UUID `gorm:"serializer:json;type:text"`
	OwnerID    uuid.UUID   `gorm:"type:uuid;not null;index"`
	State      string      `gorm:"type:varchar(30);not null;index"`
	Attempts   int         `gorm:"not null"`
	Reason     string      `gorm:"type:varchar(500)"`
	CreatedAt  time.Time   `gorm:"not null"`
	UpdatedAt  time.Time   `gorm:"not null"`
}

// TableName returns the table name for the DeletionSagaModel.
func (DeletionSagaModel) TableName() string {
	return "deletion_sagas"
}

// ToEntity converts a DeletionSagaModel to a domain DeletionSaga.
func (m *DeletionSagaModel) ToEntity() *entity.DeletionSaga {
	return &entity.DeletionSaga{
		ID:         m.ID,
		EntityType: m.EntityType,
		EntityIDs:  m.EntityIDs,
		OwnerID:    m.OwnerID,
		State:      entity.SagaState(m.State),
		Attempts:   m.Attempts,
		Reason:     m.Reason,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// SagaFromEntity creates a DeletionSagaModel from a domain entity.
func SagaFromEntity(saga *entity.DeletionSaga) *DeletionSagaModel {
	return &DeletionSagaModel{
		ID:         saga.ID,
		EntityType: saga.EntityType,
		EntityIDs:  saga.EntityIDs,
		OwnerID:    saga.OwnerID,
		State:      string(saga.State),
		Attempts:   saga.Attempts,
		Reason:     saga.Reason,
		CreatedAt:  saga.CreatedAt,
		UpdatedAt:  saga.UpdatedAt,
	}
}

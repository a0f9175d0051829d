package entity

import (
	"time"

	"github.com/google/uuid"
)

// SagaState is the persisted state of a deletion saga.
type SagaState string

const (
	SagaStateInitiated             SagaState = "initiated"
	SagaStateAwaitingDependents    SagaState = "awaiting_dependents"
	SagaStateCompensationRequested SagaState = "compensation_requested"
	SagaStateResolved              SagaState = "resolved"
)

// DeletionSaga records a cross-service delete-and-compensate workflow so the
// coordinator can resume after a crash instead of relying on event
// redelivery alone.
type DeletionSaga struct {
	ID         uuid.UUID
	EntityType string // "expense" or "income"
	EntityIDs  []uuid.UUID
	OwnerID    uuid.UUID
	State      SagaState
	Attempts   int
	Reason     string // failure reason when compensation was requested
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewDeletionSaga creates a saga in the Initiated state.
func NewDeletionSaga(entityType string, entityIDs []uuid.UUID, ownerID uuid.UUID) *DeletionSaga {
	now := time.Now().UTC()
	return &DeletionSaga{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityIDs:  entityIDs,
		OwnerID:    ownerID,
		State:      SagaStateInitiated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MarkAwaitingDependents records that the deleted event reached the broker.
func (s *DeletionSaga) MarkAwaitingDependents() {
	s.State = SagaStateAwaitingDependents
	s.UpdatedAt = time.Now().UTC()
}

// RequestCompensation records a dependent failure and moves the saga into
// the compensation path.
func (s *DeletionSaga) RequestCompensation(reason string) {
	s.State = SagaStateCompensationRequested
	s.Reason = reason
	s.Attempts++
	s.UpdatedAt = time.Now().UTC()
}

// Resolve marks the saga terminal.
func (s *DeletionSaga) Resolve() {
	s.State = SagaStateResolved
	s.UpdatedAt = time.Now().UTC()
}

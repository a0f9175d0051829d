package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/event"
)

// OutboxStatus represents the lifecycle of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxMessage is a domain event staged in the same transaction as the
// authoritative write it describes. The relay worker publishes it to the
// broker afterwards, which enforces publish-after-commit: a rolled-back
// write leaves no row, and a crash after commit only delays publication.
type OutboxMessage struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	EventName   string
	OwnerID     uuid.UUID
	OccurredAt  time.Time
	Payload     []byte
	SagaID      *uuid.UUID // set when the event starts a deletion saga
	Status      OutboxStatus
	Attempts    int
	LastError   string
	PublishedAt *time.Time
	CreatedAt   time.Time
}

// NewOutboxMessage stages an envelope for publication.
func NewOutboxMessage(env event.Envelope) *OutboxMessage {
	return &OutboxMessage{
		ID:         uuid.New(),
		EventID:    env.EventID,
		EventName:  env.EventName,
		OwnerID:    env.OwnerID,
		OccurredAt: env.OccurredAt,
		Payload:    env.Payload,
		Status:     OutboxStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

// Envelope rebuilds the event envelope staged in this message.
func (m *OutboxMessage) Envelope() event.Envelope {
	return event.Envelope{
		EventID:    m.EventID,
		EventName:  m.EventName,
		OwnerID:    m.OwnerID,
		OccurredAt: m.OccurredAt,
		Payload:    m.Payload,
	}
}

// MarkPublished records a successful publication.
func (m *OutboxMessage) MarkPublished() {
	now := time.Now().UTC()
	m.Status = OutboxStatusPublished
	m.PublishedAt = &now
}

// MarkFailed records a failed attempt; after maxAttempts the message is
// parked as failed and requires manual intervention.
func (m *OutboxMessage) MarkFailed(err error, maxAttempts int) {
	m.Attempts++
	if err != nil {
		m.LastError = err.Error()
	}
	if m.Attempts >= maxAttempts {
		m.Status = OutboxStatusFailed
	}
}

// Package event defines the domain event envelope and the typed payloads
// that travel over the event bus.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
)

// Event names. The name doubles as the routing key on the bus.
const (
	ExpenseCreatedName        = "expense.created"
	ExpenseDeletedName        = "expense.deleted"
	ExpenseDeletionFailedName = "expense.deletion_failed"
	IncomeCreatedName         = "income.created"
	IncomeDeletedName         = "income.deleted"
	IncomeDeletionFailedName  = "income.deletion_failed"
	AggregateRecomputedName   = "aggregate.recomputed"
	AccountClosedName         = "account.closed"
)

// Envelope is the transport-agnostic shape of every domain event.
// An envelope is immutable once emitted; consumers must treat redelivery
// of the same EventID as a no-op.
type Envelope struct {
	EventID    uuid.UUID       `json:"eventId"`
	EventName  string          `json:"eventName"`
	OwnerID    uuid.UUID       `json:"ownerId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a typed payload into an envelope stamped with a fresh
// event ID and the current time.
func NewEnvelope(eventName string, ownerID uuid.UUID, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventName, err)
	}
	return Envelope{
		EventID:    uuid.New(),
		EventName:  eventName,
		OwnerID:    ownerID,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// ExpenseRecord carries the full authoritative expense attributes.
// Deletion events embed complete records, not just IDs, because dependents
// need amount, category, triggers and mood to reverse their aggregates.
type ExpenseRecord struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"ownerId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Triggers    []string        `json:"triggers,omitempty"`
	Mood        string          `json:"mood,omitempty"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// IncomeRecord carries the full authoritative income attributes.
type IncomeRecord struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"ownerId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// ExpenseCreated is emitted after an expense write commits.
type ExpenseCreated struct {
	Expense ExpenseRecord `json:"expense"`
}

// ExpenseDeleted starts the deletion saga for a set of expenses.
type ExpenseDeleted struct {
	SagaID    uuid.UUID       `json:"sagaId"`
	Expenses  []ExpenseRecord `json:"expenses"`
	DeletedAt time.Time       `json:"deletedAt"`
}

// ExpenseDeletionFailed is published by a dependent that exhausted its
// retries removing its copies; it triggers owner-side compensation.
type ExpenseDeletionFailed struct {
	SagaID        uuid.UUID   `json:"sagaId"`
	ExpenseIDs    []uuid.UUID `json:"expenseIds"`
	OwnerID       uuid.UUID   `json:"ownerId"`
	Reason        string      `json:"reason"`
	ConsumerGroup string      `json:"consumerGroup"`
}

// IncomeCreated is emitted after an income write commits.
type IncomeCreated struct {
	Income IncomeRecord `json:"income"`
}

// IncomeDeleted starts the deletion saga for a set of incomes.
type IncomeDeleted struct {
	SagaID    uuid.UUID      `json:"sagaId"`
	Incomes   []IncomeRecord `json:"incomes"`
	DeletedAt time.Time      `json:"deletedAt"`
}

// IncomeDeletionFailed mirrors ExpenseDeletionFailed for incomes.
type IncomeDeletionFailed struct {
	SagaID        uuid.UUID   `json:"sagaId"`
	IncomeIDs     []uuid.UUID `json:"incomeIds"`
	OwnerID       uuid.UUID   `json:"ownerId"`
	Reason        string      `json:"reason"`
	ConsumerGroup string      `json:"consumerGroup"`
}

// AggregateSnapshot is a bulk recomputed view of one monthly aggregate.
type AggregateSnapshot struct {
	OwnerID     uuid.UUID       `json:"ownerId"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalCount  int             `json:"totalCount"`
	ComputedAt  time.Time       `json:"computedAt"`
}

// AggregateRecomputed carries a bulk snapshot, not an incremental delta.
// Consumers must apply it under a staleness guard.
type AggregateRecomputed struct {
	Snapshot AggregateSnapshot `json:"snapshot"`
}

// AccountClosed wipes every derived store for the owner.
type AccountClosed struct {
	OwnerID  uuid.UUID `json:"ownerId"`
	ClosedAt time.Time `json:"closedAt"`
}

// Decode resolves an envelope into its typed payload. Unknown names and
// malformed payloads are rejected here, before any projector runs.
func Decode(env Envelope) (any, error) {
	var payload any
	switch env.EventName {
	case ExpenseCreatedName:
		payload = &ExpenseCreated{}
	case ExpenseDeletedName:
		payload = &ExpenseDeleted{}
	case ExpenseDeletionFailedName:
		payload = &ExpenseDeletionFailed{}
	case IncomeCreatedName:
		payload = &IncomeCreated{}
	case IncomeDeletedName:
		payload = &IncomeDeleted{}
	case IncomeDeletionFailedName:
		payload = &IncomeDeletionFailed{}
	case AggregateRecomputedName:
		payload = &AggregateRecomputed{}
	case AccountClosedName:
		payload = &AccountClosed{}
	default:
		return nil, fmt.Errorf("%w: %q", domainerror.ErrUnknownEventName, env.EventName)
	}

	if err := json.Unmarshal(env.Payload, payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domainerror.ErrMalformedEventPayload, env.EventName, err)
	}
	return payload, nil
}

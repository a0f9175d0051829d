// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/finance-tracker/eventcore/internal/domain/event"
)

// EventHandler processes a single delivered envelope. Returning an error
// leaves the message unacknowledged so the bus retry/dead-letter policy
// applies; handlers must be idempotent because redelivery is expected.
type EventHandler func(ctx context.Context, env event.Envelope) error

// EventPublisher publishes domain events to the bus. Publish returns only
// after the broker has durably accepted the event.
type EventPublisher interface {
	Publish(ctx context.Context, env event.Envelope) error
	Close() error
}

// EventSubscriber delivers events to a consumer group. Each group gets its
// own queue; handlers are keyed by event name (routing key). Subscribe
// blocks until the context is cancelled.
type EventSubscriber interface {
	Subscribe(ctx context.Context, consumerGroup string, handlers map[string]EventHandler) error
	Close() error
}

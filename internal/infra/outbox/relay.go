// Package outbox implements the transactional-outbox relay worker.
package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// Relay drains pending outbox rows to the event bus. Because rows are
// written in the same transaction as the authoritative write, publication
// always happens after commit; a crash here only delays delivery.
type Relay struct {
	outbox       adapter.OutboxRepository
	sagas        adapter.SagaRepository
	publisher    adapter.EventPublisher
	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
}

// RelayConfig holds configuration for the outbox relay.
type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// NewRelay creates a new outbox relay worker.
func NewRelay(
	outbox adapter.OutboxRepository,
	sagas adapter.SagaRepository,
	publisher adapter.EventPublisher,
	config RelayConfig,
) *Relay {
	return &Relay{
		outbox:       outbox,
		sagas:        sagas,
		publisher:    publisher,
		pollInterval: config.PollInterval,
		batchSize:    config.BatchSize,
		maxAttempts:  config.MaxAttempts,
	}
}

// Start begins the relay loop. It blocks until the context is cancelled.
func (r *Relay) Start(ctx context.Context) {
	slog.Info("Outbox relay started",
		"poll_interval", r.pollInterval,
		"batch_size", r.batchSize,
	)

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	// Drain immediately on start, then on ticker
	r.processBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox relay shutting down")
			return
		case <-ticker.C:
			r.processBatch(ctx)
		}
	}
}

// ProcessNow drains pending messages immediately (useful for testing).
func (r *Relay) ProcessNow(ctx context.Context) {
	r.processBatch(ctx)
}

func (r *Relay) processBatch(ctx context.Context) {
	messages, err := r.outbox.GetPending(ctx, r.batchSize)
	if err != nil {
		slog.Error("Failed to fetch pending outbox messages", "error", err)
		return
	}

	for _, msg := range messages {
		select {
		case <-ctx.Done():
			return
		default:
			r.processMessage(ctx, msg)
		}
	}
}

func (r *Relay) processMessage(ctx context.Context, msg *entity.OutboxMessage) {
	logger := slog.With(
		"event", msg.EventName,
		"event_id", msg.EventID,
		"owner_id", msg.OwnerID,
	)

	if err := r.publisher.Publish(ctx, msg.Envelope()); err != nil {
		msg.MarkFailed(err, r.maxAttempts)
		if updateErr := r.outbox.Update(ctx, msg); updateErr != nil {
			logger.Error("Failed to update outbox message after publish failure", "error", updateErr)
			return
		}
		if msg.Status == entity.OutboxStatusFailed {
			logger.Error("Outbox message permanently failed",
				"attempts", msg.Attempts,
				"last_error", msg.LastError,
			)
		} else {
			logger.Warn("Outbox publish failed, will retry",
				"attempts", msg.Attempts,
				"error", err,
			)
		}
		return
	}

	msg.MarkPublished()
	if err := r.outbox.Update(ctx, msg); err != nil {
		// The event is out but the row still reads pending; the next drain
		// republishes it and consumers absorb the duplicate (at-least-once).
		logger.Error("Failed to mark outbox message published", "error", err)
		return
	}

	if msg.SagaID != nil {
		r.advanceSaga(ctx, msg, logger)
	}

	logger.Info("Outbox message published")
}

// advanceSaga moves the saga out of Initiated once its deleted event has
// actually reached the broker.
func (r *Relay) advanceSaga(ctx context.Context, msg *entity.OutboxMessage, logger *slog.Logger) {
	saga, err := r.sagas.FindByID(ctx, *msg.SagaID)
	if err != nil {
		logger.Error("Failed to load saga after publish", "saga_id", msg.SagaID, "error", err)
		return
	}
	if saga.State != entity.SagaStateInitiated {
		return
	}
	saga.MarkAwaitingDependents()
	if err := r.sagas.Save(ctx, saga); err != nil {
		logger.Error("Failed to advance saga state", "saga_id", saga.ID, "error", err)
	}
}

// Package projector contains the event consumers that maintain the derived
// read models. Every handler is idempotent under redelivery.
package projector

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	"github.com/finance-tracker/eventcore/internal/domain/event"
	"github.com/finance-tracker/eventcore/internal/infra/retry"
)

// Config bounds the in-process retry loop around each record.
type Config struct {
	ConsumerGroup string
	MaxAttempts   int
	BaseDelay     time.Duration
}

// AggregateProjector folds expense and income events into per-owner monthly
// aggregates. Dedup relies on the per-source detail row: a redelivered
// created event whose entry already exists is acknowledged without effect.
type AggregateProjector struct {
	aggregateRepo adapter.AggregateRepository
	publisher     adapter.EventPublisher
	cfg           Config
}

// NewAggregateProjector creates a new AggregateProjector instance.
func NewAggregateProjector(
	aggregateRepo adapter.AggregateRepository,
	publisher adapter.EventPublisher,
	cfg Config,
) *AggregateProjector {
	return &AggregateProjector{
		aggregateRepo: aggregateRepo,
		publisher:     publisher,
		cfg:           cfg,
	}
}

// Handlers returns the event bindings for this projector's consumer group.
func (p *AggregateProjector) Handlers() map[string]adapter.EventHandler {
	return map[string]adapter.EventHandler{
		event.ExpenseCreatedName: p.HandleExpenseCreated,
		event.ExpenseDeletedName: p.HandleExpenseDeleted,
		event.IncomeCreatedName:  p.HandleIncomeCreated,
		event.IncomeDeletedName:  p.HandleIncomeDeleted,
		event.AccountClosedName:  p.HandleAccountClosed,
	}
}

// HandleExpenseCreated folds one expense into its monthly aggregate.
func (p *AggregateProjector) HandleExpenseCreated(ctx context.Context, env event.Envelope) error {
	payload, err := event.Decode(env)
	if err != nil {
		return err
	}
	created := payload.(*event.ExpenseCreated)
	rec := created.Expense

	return p.fold(ctx, foldInput{
		sourceID:   rec.ID,
		ownerID:    rec.OwnerID,
		sourceType: "expense",
		amount:     rec.Amount,
		category:   rec.Category,
		triggers:   rec.Triggers,
		mood:       rec.Mood,
		occurredAt: rec.OccurredAt,
	})
}

// HandleIncomeCreated folds one income into its monthly aggregate.
func (p *AggregateProjector) HandleIncomeCreated(ctx context.Context, env event.Envelope) error {
	payload, err := event.Decode(env)
	if err != nil {
		return err
	}
	created := payload.(*event.IncomeCreated)
	rec := created.Income

	return p.fold(ctx, foldInput{
		sourceID:   rec.ID,
		ownerID:    rec.OwnerID,
		sourceType: "income",
		amount:     rec.Amount,
		category:   rec.Category,
		occurredAt: rec.OccurredAt,
	})
}

// HandleExpenseDeleted unfolds the deleted expenses. Exhausted retries
// publish the dependent-failure event and acknowledge; the saga
// coordinator takes over from there.
func (p *AggregateProjector) HandleExpenseDeleted(ctx context.Context, env event.Envelope) error {
	payload, err := event.Decode(env)
	if err != nil {
		return err
	}
	deleted := payload.(*event.ExpenseDeleted)

	for _, rec := range deleted.Expenses {
		rec := rec
		err := retry.Do(ctx, p.cfg.MaxAttempts, p.cfg.BaseDelay, func(ctx context.Context) error {
			return p.unfold(ctx, foldInput{
				sourceID:   rec.ID,
				ownerID:    rec.OwnerID,
				sourceType: "expense",
				amount:     rec.Amount,
				category:   rec.Category,
				triggers:   rec.Triggers,
				mood:       rec.Mood,
				occurredAt: rec.OccurredAt,
			})
		})
		if err != nil {
			ids := make([]uuid.UUID, len(deleted.Expenses))
			for i, r := range deleted.Expenses {
				ids[i] = r.ID
			}
			return p.publishFailure(ctx, env.OwnerID, event.ExpenseDeletionFailedName, event.ExpenseDeletionFailed{
				SagaID:        deleted.SagaID,
				ExpenseIDs:    ids,
				OwnerID:       env.OwnerID,
				Reason:        err.Error(),
				ConsumerGroup: p.cfg.ConsumerGroup,
			})
		}
	}
	return nil
}

// HandleIncomeDeleted unfolds the deleted incomes.
func (p *AggregateProjector) HandleIncomeDeleted(ctx context.Context, env event.Envelope) error {
	payload, err := event.Decode(env)
	if err != nil {
		return err
	}
	deleted := payload.(*event.IncomeDeleted)

	for _, rec := range deleted.Incomes {
		rec := rec
		err := retry.Do(ctx, p.cfg.MaxAttempts, p.cfg.BaseDelay, func(ctx context.Context) error {
			return p.unfold(ctx, foldInput{
				sourceID:   rec.ID,
				ownerID:    rec.OwnerID,
				sourceType: "income",
				amount:     rec.Amount,
				category:   rec.Category,
				occurredAt: rec.OccurredAt,
			})
		})
		if err != nil {
			ids := make([]uuid.UUID, len(deleted.Incomes))
			for i, r := range deleted.Incomes {
				ids[i] = r.ID
			}
			return p.publishFailure(ctx, env.OwnerID, event.IncomeDeletionFailedName, event.IncomeDeletionFailed{
				SagaID:        deleted.SagaID,
				IncomeIDs:     ids,
				OwnerID:       env.OwnerID,
				Reason:        err.Error(),
				ConsumerGroup: p.cfg.ConsumerGroup,
			})
		}
	}
	return nil
}

// HandleAccountClosed wipes the owner's aggregates and detail entries.
func (p *AggregateProjector) HandleAccountClosed(ctx context.Context, env event.Envelope) error {
	if _, err := event.Decode(env); err != nil {
		return err
	}
	return p.aggregateRepo.DeleteByOwner(ctx, env.OwnerID)
}

type foldInput struct {
	sourceID   uuid.UUID
	ownerID    uuid.UUID
	sourceType string
	amount     decimal.Decimal
	category   string
	triggers   []string
	mood       string
	occurredAt time.Time
}

func (p *AggregateProjector) fold(ctx context.Context, in foldInput) error {
	entry, err := p.aggregateRepo.FindEntry(ctx, in.sourceID)
	if err != nil {
		return err
	}
	if entry != nil {
		if entry.Deleted {
			slog.Info("skipping tombstoned source", "sourceId", in.sourceID)
		} else {
			slog.Info("skipping already folded source", "sourceId", in.sourceID)
		}
		return nil
	}

	year, month := in.occurredAt.UTC().Year(), int(in.occurredAt.UTC().Month())
	agg, err := p.aggregateRepo.LoadOrCreate(ctx, in.ownerID, year, month)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	agg.Add(in.amount, in.category, in.triggers, in.mood)
	agg.LastAppliedAt = now
	agg.UpdatedAt = now

	entry = &entity.AggregateEntry{
		SourceID:   in.sourceID,
		OwnerID:    in.ownerID,
		SourceType: in.sourceType,
		Amount:     in.amount,
		Category:   in.category,
		Triggers:   in.triggers,
		Mood:       in.mood,
		Year:       year,
		Month:      month,
		CreatedAt:  now,
	}

	outbox, err := p.snapshotMessage(agg, now)
	if err != nil {
		return err
	}
	return p.aggregateRepo.SaveWithEntry(ctx, agg, entry, outbox)
}

// unfold reverses one fold. A source already unfolded is a no-op so
// redelivery cannot subtract twice; a source never folded in is tombstoned
// so a reordered created event cannot resurrect the deleted record.
func (p *AggregateProjector) unfold(ctx context.Context, in foldInput) error {
	entry, err := p.aggregateRepo.FindEntry(ctx, in.sourceID)
	if err != nil {
		return err
	}
	if entry != nil && entry.Deleted {
		return nil
	}

	year, month := in.occurredAt.UTC().Year(), int(in.occurredAt.UTC().Month())

	if entry == nil {
		// The deletion overtook its own created event. Nothing was folded,
		// so the aggregate stays untouched.
		return p.aggregateRepo.SaveTombstone(ctx, &entity.AggregateEntry{
			SourceID:   in.sourceID,
			OwnerID:    in.ownerID,
			SourceType: in.sourceType,
			Amount:     in.amount,
			Category:   in.category,
			Triggers:   in.triggers,
			Mood:       in.mood,
			Year:       year,
			Month:      month,
			Deleted:    true,
			CreatedAt:  time.Now().UTC(),
		})
	}
	agg, err := p.aggregateRepo.LoadOrCreate(ctx, in.ownerID, year, month)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	agg.Remove(in.amount, in.category, in.triggers, in.mood)
	agg.LastAppliedAt = now
	agg.UpdatedAt = now

	outbox, err := p.snapshotMessage(agg, now)
	if err != nil {
		return err
	}
	return p.aggregateRepo.SaveWithTombstone(ctx, agg, in.sourceID, outbox)
}

// snapshotMessage stages an aggregate.recomputed event carrying the full
// snapshot, so downstream consumers replace rather than increment.
func (p *AggregateProjector) snapshotMessage(agg *entity.MonthlyAggregate, computedAt time.Time) (*entity.OutboxMessage, error) {
	env, err := event.NewEnvelope(event.AggregateRecomputedName, agg.OwnerID, event.AggregateRecomputed{
		Snapshot: event.AggregateSnapshot{
			OwnerID:     agg.OwnerID,
			Year:        agg.Year,
			Month:       agg.Month,
			TotalAmount: agg.TotalAmount,
			TotalCount:  agg.TotalCount,
			ComputedAt:  computedAt,
		},
	})
	if err != nil {
		return nil, err
	}
	return entity.NewOutboxMessage(env), nil
}

func (p *AggregateProjector) publishFailure(ctx context.Context, ownerID uuid.UUID, name string, payload any) error {
	env, err := event.NewEnvelope(name, ownerID, payload)
	if err != nil {
		return err
	}
	if err := p.publisher.Publish(ctx, env); err != nil {
		// Returning the error lets the broker redeliver the original event,
		// which retries the whole record set and the failure publication.
		return err
	}
	slog.Error("dependent deletion failed, compensation requested",
		"consumerGroup", p.cfg.ConsumerGroup,
		"event", name,
		"ownerId", ownerID)
	return nil
}

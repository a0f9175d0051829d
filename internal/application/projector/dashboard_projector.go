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

// DashboardProjector maintains the per-owner dashboard cache: a bounded
// most-recent-first item list plus an embedded aggregate snapshot.
type DashboardProjector struct {
	dashboardRepo adapter.DashboardRepository
	publisher     adapter.EventPublisher
	capacity      int
	cfg           Config
}

// NewDashboardProjector creates a new DashboardProjector instance.
func NewDashboardProjector(
	dashboardRepo adapter.DashboardRepository,
	publisher adapter.EventPublisher,
	capacity int,
	cfg Config,
) *DashboardProjector {
	return &DashboardProjector{
		dashboardRepo: dashboardRepo,
		publisher:     publisher,
		capacity:      capacity,
		cfg:           cfg,
	}
}

// Handlers returns the event bindings for this projector's consumer group.
func (p *DashboardProjector) Handlers() map[string]adapter.EventHandler {
	return map[string]adapter.EventHandler{
		event.ExpenseCreatedName:      p.HandleExpenseCreated,
		event.ExpenseDeletedName:      p.HandleExpenseDeleted,
		event.IncomeCreatedName:       p.HandleIncomeCreated,
		event.IncomeDeletedName:       p.HandleIncomeDeleted,
		event.AggregateRecomputedName: p.HandleAggregateRecomputed,
		event.AccountClosedName:       p.HandleAccountClosed,
	}
}

// HandleExpenseCreated prepends the expense to the recent-items list.
func (p *DashboardProjector) HandleExpenseCreated(ctx context.Context, env event.Envelope) error {
	payload, err := event.Decode(env)
	if err != nil {
		return err
	}
	rec := payload.(*event.ExpenseCreated).Expense

	return p.addItem(ctx, &entity.DashboardItem{
		ID:          uuid.New(),
		OwnerID:     rec.OwnerID,
		SourceID:    rec.ID,
		SourceType:  "expense",
		Description: rec.Description,
		Amount:      rec.Amount,
		Category:    rec.Category,
		OccurredAt:  rec.OccurredAt,
		CreatedAt:   time.Now().UTC(),
	})
}

// HandleIncomeCreated prepends the income to the recent-items list.
func (p *DashboardProjector) HandleIncomeCreated(ctx context.Context, env event.Envelope) error {
	payload, err := event.Decode(env)
	if err != nil {
		return err
	}
	rec := payload.(*event.IncomeCreated).Income

	return p.addItem(ctx, &entity.DashboardItem{
		ID:          uuid.New(),
		OwnerID:     rec.OwnerID,
		SourceID:    rec.ID,
		SourceType:  "income",
		Description: rec.Description,
		Amount:      rec.Amount,
		Category:    rec.Category,
		OccurredAt:  rec.OccurredAt,
		CreatedAt:   time.Now().UTC(),
	})
}

// HandleExpenseDeleted drops the deleted expenses from the list. Exhausted
// retries publish the dependent-failure event and acknowledge.
func (p *DashboardProjector) HandleExpenseDeleted(ctx context.Context, env event.Envelope) error {
	payload, err := event.Decode(env)
	if err != nil {
		return err
	}
	deleted := payload.(*event.ExpenseDeleted)

	ids := make([]uuid.UUID, len(deleted.Expenses))
	for i, rec := range deleted.Expenses {
		ids[i] = rec.ID
	}

	err = retry.Do(ctx, p.cfg.MaxAttempts, p.cfg.BaseDelay, func(ctx context.Context) error {
		return p.removeItems(ctx, env.OwnerID, "expense", ids)
	})
	if err != nil {
		return p.publishFailure(ctx, env.OwnerID, event.ExpenseDeletionFailedName, event.ExpenseDeletionFailed{
			SagaID:        deleted.SagaID,
			ExpenseIDs:    ids,
			OwnerID:       env.OwnerID,
			Reason:        err.Error(),
			ConsumerGroup: p.cfg.ConsumerGroup,
		})
	}
	return nil
}

// HandleIncomeDeleted drops the deleted incomes from the list.
func (p *DashboardProjector) HandleIncomeDeleted(ctx context.Context, env event.Envelope) error {
	payload, err := event.Decode(env)
	if err != nil {
		return err
	}
	deleted := payload.(*event.IncomeDeleted)

	ids := make([]uuid.UUID, len(deleted.Incomes))
	for i, rec := range deleted.Incomes {
		ids[i] = rec.ID
	}

	err = retry.Do(ctx, p.cfg.MaxAttempts, p.cfg.BaseDelay, func(ctx context.Context) error {
		return p.removeItems(ctx, env.OwnerID, "income", ids)
	})
	if err != nil {
		return p.publishFailure(ctx, env.OwnerID, event.IncomeDeletionFailedName, event.IncomeDeletionFailed{
			SagaID:        deleted.SagaID,
			IncomeIDs:     ids,
			OwnerID:       env.OwnerID,
			Reason:        err.Error(),
			ConsumerGroup: p.cfg.ConsumerGroup,
		})
	}
	return nil
}

// HandleAggregateRecomputed refreshes the embedded snapshot under the
// staleness guard: snapshots computed at or before the applied one are
// dropped, so reordered deliveries cannot regress the view.
func (p *DashboardProjector) HandleAggregateRecomputed(ctx context.Context, env event.Envelope) error {
	payload, err := event.Decode(env)
	if err != nil {
		return err
	}
	snapshot := payload.(*event.AggregateRecomputed).Snapshot

	cache, err := p.dashboardRepo.LoadOrCreate(ctx, snapshot.OwnerID)
	if err != nil {
		return err
	}

	if !snapshot.ComputedAt.After(cache.SnapshotAppliedAt) {
		slog.Warn("dropping stale aggregate snapshot",
			"ownerId", snapshot.OwnerID,
			"computedAt", snapshot.ComputedAt,
			"appliedAt", cache.SnapshotAppliedAt)
		return nil
	}

	cache.SnapshotYear = snapshot.Year
	cache.SnapshotMonth = snapshot.Month
	cache.SnapshotTotalAmount = snapshot.TotalAmount
	cache.SnapshotTotalCount = snapshot.TotalCount
	cache.SnapshotAppliedAt = snapshot.ComputedAt
	cache.UpdatedAt = time.Now().UTC()

	return p.dashboardRepo.Save(ctx, cache)
}

// HandleAccountClosed wipes the owner's cache and detail records.
func (p *DashboardProjector) HandleAccountClosed(ctx context.Context, env event.Envelope) error {
	if _, err := event.Decode(env); err != nil {
		return err
	}
	return p.dashboardRepo.DeleteByOwner(ctx, env.OwnerID)
}

func (p *DashboardProjector) addItem(ctx context.Context, item *entity.DashboardItem) error {
	exists, err := p.dashboardRepo.ItemExistsBySource(ctx, item.SourceID)
	if err != nil {
		return err
	}
	if exists {
		slog.Info("skipping already listed source", "sourceId", item.SourceID)
		return nil
	}

	cache, err := p.dashboardRepo.LoadOrCreate(ctx, item.OwnerID)
	if err != nil {
		return err
	}

	evicted := cache.Prepend(item.ID, p.capacity)
	cache.UpdatedAt = time.Now().UTC()

	return p.dashboardRepo.SaveWithItem(ctx, cache, item, evicted)
}

// removeItems drops listed sources and tombstones unlisted ones, so a
// deleted event arriving before its created event still wins. Sources
// already tombstoned are skipped by the repository.
func (p *DashboardProjector) removeItems(ctx context.Context, ownerID uuid.UUID, sourceType string, sourceIDs []uuid.UUID) error {
	items, err := p.dashboardRepo.ItemsBySource(ctx, ownerID, sourceIDs)
	if err != nil {
		return err
	}

	listed := make(map[uuid.UUID]struct{}, len(items))
	itemIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
		listed[item.SourceID] = struct{}{}
	}

	if len(items) > 0 {
		cache, err := p.dashboardRepo.LoadOrCreate(ctx, ownerID)
		if err != nil {
			return err
		}

		cache.RemoveRefs(itemIDs)
		cache.UpdatedAt = time.Now().UTC()

		if err := p.dashboardRepo.SaveRemovingItems(ctx, cache, itemIDs); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	var tombstones []*entity.DashboardItem
	for _, sourceID := range sourceIDs {
		if _, ok := listed[sourceID]; ok {
			continue
		}
		tombstones = append(tombstones, &entity.DashboardItem{
			ID:         uuid.New(),
			OwnerID:    ownerID,
			SourceID:   sourceID,
			SourceType: sourceType,
			Amount:     decimal.Zero,
			Deleted:    true,
			OccurredAt: now,
			CreatedAt:  now,
		})
	}
	return p.dashboardRepo.SaveItemTombstones(ctx, tombstones)
}

func (p *DashboardProjector) publishFailure(ctx context.Context, ownerID uuid.UUID, name string, payload any) error {
	env, err := event.NewEnvelope(name, ownerID, payload)
	if err != nil {
		return err
	}
	if err := p.publisher.Publish(ctx, env); err != nil {
		return err
	}
	slog.Error("dependent deletion failed, compensation requested",
		"consumerGroup", p.cfg.ConsumerGroup,
		"event", name,
		"ownerId", ownerID)
	return nil
}

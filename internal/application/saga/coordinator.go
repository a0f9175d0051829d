// Package saga contains the deletion saga coordinator.
package saga

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
	"github.com/finance-tracker/eventcore/internal/domain/event"
)

// Coordinator drives deletion sagas to a terminal state. The happy path
// resolves quiet sagas from a background sweep; the failure path reacts to
// dependent-failure events by restoring the soft-deleted records.
type Coordinator struct {
	sagaRepo    adapter.SagaRepository
	expenseRepo adapter.ExpenseRepository
	incomeRepo  adapter.IncomeRepository
	tokenRepo   adapter.TokenLedgerRepository

	graceWindow   time.Duration
	sweepInterval time.Duration
	sweepBatch    int
}

// CoordinatorConfig tunes the resolution sweep.
type CoordinatorConfig struct {
	// GraceWindow is how long a saga stays in awaiting_dependents before a
	// silent outcome counts as success.
	GraceWindow   time.Duration
	SweepInterval time.Duration
	SweepBatch    int
}

// NewCoordinator creates a new Coordinator instance.
func NewCoordinator(
	sagaRepo adapter.SagaRepository,
	expenseRepo adapter.ExpenseRepository,
	incomeRepo adapter.IncomeRepository,
	tokenRepo adapter.TokenLedgerRepository,
	cfg CoordinatorConfig,
) *Coordinator {
	return &Coordinator{
		sagaRepo:      sagaRepo,
		expenseRepo:   expenseRepo,
		incomeRepo:    incomeRepo,
		tokenRepo:     tokenRepo,
		graceWindow:   cfg.GraceWindow,
		sweepInterval: cfg.SweepInterval,
		sweepBatch:    cfg.SweepBatch,
	}
}

// Handlers returns the event bindings for the coordinator's consumer group.
func (c *Coordinator) Handlers() map[string]adapter.EventHandler {
	return map[string]adapter.EventHandler{
		event.ExpenseDeletionFailedName: c.HandleExpenseDeletionFailed,
		event.IncomeDeletionFailedName:  c.HandleIncomeDeletionFailed,
		event.AccountClosedName:         c.HandleAccountClosed,
	}
}

// Start runs the resolution sweep until the context is cancelled.
func (c *Coordinator) Start(ctx context.Context) {
	slog.Info("saga coordinator started",
		"graceWindow", c.graceWindow,
		"sweepInterval", c.sweepInterval)

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("saga coordinator stopped")
			return
		case <-ticker.C:
			if err := c.ResolveQuietSagas(ctx); err != nil {
				slog.Error("saga resolution sweep failed", "error", err)
			}
		}
	}
}

// ResolveQuietSagas resolves sagas whose grace window elapsed with no
// dependent reporting failure.
func (c *Coordinator) ResolveQuietSagas(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-c.graceWindow)
	sagas, err := c.sagaRepo.FindAwaitingBefore(ctx, cutoff, c.sweepBatch)
	if err != nil {
		return err
	}

	for _, saga := range sagas {
		saga.Resolve()
		if err := c.sagaRepo.Save(ctx, saga); err != nil {
			return err
		}
		slog.Info("deletion saga resolved",
			"sagaId", saga.ID,
			"entityType", saga.EntityType,
			"ownerId", saga.OwnerID)
	}
	return nil
}

// HandleExpenseDeletionFailed compensates a failed expense deletion by
// restoring the soft-deleted rows. A saga already resolved, or compensated
// by an earlier delivery of the same failure, is left untouched.
func (c *Coordinator) HandleExpenseDeletionFailed(ctx context.Context, env event.Envelope) error {
	payload, err := event.Decode(env)
	if err != nil {
		return err
	}
	failed := payload.(*event.ExpenseDeletionFailed)

	return c.compensate(ctx, compensation{
		sagaID:        failed.SagaID,
		reason:        failed.Reason,
		consumerGroup: failed.ConsumerGroup,
		restore: func(ctx context.Context, saga *entity.DeletionSaga) error {
			return c.expenseRepo.Restore(ctx, saga.EntityIDs, saga.OwnerID, saga)
		},
	})
}

// HandleIncomeDeletionFailed mirrors HandleExpenseDeletionFailed.
func (c *Coordinator) HandleIncomeDeletionFailed(ctx context.Context, env event.Envelope) error {
	payload, err := event.Decode(env)
	if err != nil {
		return err
	}
	failed := payload.(*event.IncomeDeletionFailed)

	return c.compensate(ctx, compensation{
		sagaID:        failed.SagaID,
		reason:        failed.Reason,
		consumerGroup: failed.ConsumerGroup,
		restore: func(ctx context.Context, saga *entity.DeletionSaga) error {
			return c.incomeRepo.Restore(ctx, saga.EntityIDs, saga.OwnerID, saga)
		},
	})
}

// HandleAccountClosed drops the owner's token ledger. The projectors wipe
// their own read models from the same event in their own groups.
func (c *Coordinator) HandleAccountClosed(ctx context.Context, env event.Envelope) error {
	if _, err := event.Decode(env); err != nil {
		return err
	}
	return c.tokenRepo.DeleteByOwner(ctx, env.OwnerID)
}

type compensation struct {
	sagaID        uuid.UUID
	reason        string
	consumerGroup string
	restore       func(ctx context.Context, saga *entity.DeletionSaga) error
}

func (c *Coordinator) compensate(ctx context.Context, comp compensation) error {
	saga, err := c.sagaRepo.FindByID(ctx, comp.sagaID)
	if err != nil {
		if errors.Is(err, domainerror.ErrSagaNotFound) {
			slog.Warn("deletion failure for unknown saga, ignoring", "sagaId", comp.sagaID)
			return nil
		}
		return err
	}

	if saga.State == entity.SagaStateResolved {
		slog.Debug("deletion failure for resolved saga, ignoring", "sagaId", saga.ID)
		return nil
	}

	saga.RequestCompensation(comp.reason)
	if err := c.sagaRepo.Save(ctx, saga); err != nil {
		return err
	}

	slog.Warn("compensating failed deletion",
		"sagaId", saga.ID,
		"entityType", saga.EntityType,
		"consumerGroup", comp.consumerGroup,
		"reason", comp.reason)

	saga.Resolve()
	if err := comp.restore(ctx, saga); err != nil {
		// The saga stays in compensation_requested; redelivery of the
		// failure event retries the restore.
		saga.State = entity.SagaStateCompensationRequested
		return err
	}

	slog.Info("deletion saga compensated and resolved", "sagaId", saga.ID)
	return nil
}

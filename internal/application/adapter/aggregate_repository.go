package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// Period identifies one monthly aggregate for an owner.
type Period struct {
	Year  int
	Month int
}

// AggregateRepository is the financial-data projector's single store:
// monthly aggregates plus the per-source entries used for dedup.
type AggregateRepository interface {
	// LoadOrCreate returns the aggregate for the period, creating an empty
	// one lazily on first relevant event.
	LoadOrCreate(ctx context.Context, ownerID uuid.UUID, year, month int) (*entity.MonthlyAggregate, error)

	// FindEntry returns the detail row for the source entity, tombstoned or
	// not, or nil when the source was never seen.
	FindEntry(ctx context.Context, sourceID uuid.UUID) (*entity.AggregateEntry, error)

	// SaveWithEntry persists the folded aggregate, the new detail entry and
	// the staged snapshot event in one transaction.
	SaveWithEntry(ctx context.Context, agg *entity.MonthlyAggregate, entry *entity.AggregateEntry, outbox *entity.OutboxMessage) error

	// SaveWithTombstone persists the unfolded aggregate and tombstones the
	// detail entry in one transaction.
	SaveWithTombstone(ctx context.Context, agg *entity.MonthlyAggregate, sourceID uuid.UUID, outbox *entity.OutboxMessage) error

	// SaveTombstone records a deletion observed before its creation. Sources
	// that already have a row are left untouched.
	SaveTombstone(ctx context.Context, entry *entity.AggregateEntry) error

	// FindByPeriods returns the owner's aggregates for the given periods;
	// missing periods are simply absent from the result.
	FindByPeriods(ctx context.Context, ownerID uuid.UUID, periods []Period) ([]*entity.MonthlyAggregate, error)

	// DeleteByOwner wipes the owner's aggregates and entries. Only used when
	// the owning account is closed.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error
}

package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// SagaRepository persists deletion saga state so the coordinator can resume
// after a crash.
type SagaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.DeletionSaga, error)

	// FindAwaitingBefore returns sagas still awaiting dependents whose last
	// transition happened before the cutoff. The coordinator resolves them:
	// no dependent reported failure within the grace window.
	FindAwaitingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.DeletionSaga, error)

	Save(ctx context.Context, saga *entity.DeletionSaga) error
}

package income

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
	"github.com/finance-tracker/eventcore/internal/domain/event"
)

// DeleteIncomesInput represents the input for income deletion.
type DeleteIncomesInput struct {
	OwnerID   uuid.UUID
	IncomeIDs []uuid.UUID
}

// DeleteIncomesOutput represents the output of income deletion.
type DeleteIncomesOutput struct {
	SagaID       uuid.UUID
	DeletedCount int64
}

// DeleteIncomesUseCase starts the deletion saga for a set of incomes.
type DeleteIncomesUseCase struct {
	incomeRepo adapter.IncomeRepository
}

// NewDeleteIncomesUseCase creates a new DeleteIncomesUseCase instance.
func NewDeleteIncomesUseCase(incomeRepo adapter.IncomeRepository) *DeleteIncomesUseCase {
	return &DeleteIncomesUseCase{
		incomeRepo: incomeRepo,
	}
}

// Execute soft-deletes the incomes, records the saga and stages the deleted
// event in one transaction.
func (uc *DeleteIncomesUseCase) Execute(ctx context.Context, input DeleteIncomesInput) (*DeleteIncomesOutput, error) {
	if len(input.IncomeIDs) == 0 {
		return nil, domainerror.NewIncomeError(
			domainerror.ErrCodeEmptyIncomeIDs,
			"at least one income ID is required",
			domainerror.ErrEmptyIncomeIDs,
		)
	}

	incomes, err := uc.incomeRepo.FindByIDs(ctx, input.IncomeIDs, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if len(incomes) != len(uniqueIncomeIDs(input.IncomeIDs)) {
		return nil, domainerror.NewIncomeError(
			domainerror.ErrCodeIncomeIDsNotFound,
			"one or more incomes were not found for this owner",
			domainerror.ErrIncomeIDsNotFound,
		)
	}

	records := make([]event.IncomeRecord, len(incomes))
	ids := make([]uuid.UUID, len(incomes))
	for i, inc := range incomes {
		records[i] = incomeRecord(inc)
		ids[i] = inc.ID
	}

	saga := entity.NewDeletionSaga("income", ids, input.OwnerID)

	env, err := event.NewEnvelope(event.IncomeDeletedName, input.OwnerID, event.IncomeDeleted{
		SagaID:    saga.ID,
		Incomes:   records,
		DeletedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	outbox := entity.NewOutboxMessage(env)
	outbox.SagaID = &saga.ID

	deleted, err := uc.incomeRepo.SoftDelete(ctx, ids, input.OwnerID, saga, outbox)
	if err != nil {
		return nil, err
	}

	return &DeleteIncomesOutput{
		SagaID:       saga.ID,
		DeletedCount: deleted,
	}, nil
}

func uniqueIncomeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

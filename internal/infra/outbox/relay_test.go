package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
	"github.com/finance-tracker/eventcore/internal/domain/event"
)

type fakeOutboxRepo struct {
	messages []*entity.OutboxMessage
}

func (r *fakeOutboxRepo) GetPending(ctx context.Context, limit int) ([]*entity.OutboxMessage, error) {
	var pending []*entity.OutboxMessage
	for _, msg := range r.messages {
		if msg.Status == entity.OutboxStatusPending {
			pending = append(pending, msg)
		}
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (r *fakeOutboxRepo) Update(ctx context.Context, msg *entity.OutboxMessage) error {
	return nil
}

type fakeSagaRepo struct {
	sagas map[uuid.UUID]*entity.DeletionSaga
}

func newFakeSagaRepo() *fakeSagaRepo {
	return &fakeSagaRepo{sagas: make(map[uuid.UUID]*entity.DeletionSaga)}
}

func (r *fakeSagaRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.DeletionSaga, error) {
	if saga, ok := r.sagas[id]; ok {
		return saga, nil
	}
	return nil, domainerror.ErrSagaNotFound
}

func (r *fakeSagaRepo) FindAwaitingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.DeletionSaga, error) {
	return nil, nil
}

func (r *fakeSagaRepo) Save(ctx context.Context, saga *entity.DeletionSaga) error {
	r.sagas[saga.ID] = saga
	return nil
}

type capturePublisher struct {
	mu         sync.Mutex
	published  []event.Envelope
	publishErr error
}

func (p *capturePublisher) Publish(ctx context.Context, env event.Envelope) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, env)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func stagedMessage(t *testing.T, name string, ownerID uuid.UUID, payload any) *entity.OutboxMessage {
	t.Helper()
	env, err := event.NewEnvelope(name, ownerID, payload)
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}
	return entity.NewOutboxMessage(env)
}

func newTestRelay(outboxRepo *fakeOutboxRepo, sagaRepo *fakeSagaRepo, publisher *capturePublisher) *Relay {
	return NewRelay(outboxRepo, sagaRepo, publisher, RelayConfig{
		PollInterval: time.Second,
		BatchSize:    10,
		MaxAttempts:  3,
	})
}

func TestRelayPublishesPendingMessages(t *testing.T) {
	ownerID := uuid.New()
	first := stagedMessage(t, event.ExpenseCreatedName, ownerID, event.ExpenseCreated{})
	second := stagedMessage(t, event.IncomeCreatedName, ownerID, event.IncomeCreated{})
	outboxRepo := &fakeOutboxRepo{messages: []*entity.OutboxMessage{first, second}}
	publisher := &capturePublisher{}

	relay := newTestRelay(outboxRepo, newFakeSagaRepo(), publisher)
	relay.ProcessNow(context.Background())

	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.published))
	}
	if publisher.published[0].EventID != first.EventID {
		t.Error("expected messages published in stored order")
	}
	for _, msg := range outboxRepo.messages {
		if msg.Status != entity.OutboxStatusPublished {
			t.Errorf("expected message %s marked published, got %s", msg.EventID, msg.Status)
		}
	}
}

func TestRelayAdvancesSagaAfterPublish(t *testing.T) {
	ownerID := uuid.New()
	sagaRepo := newFakeSagaRepo()
	saga := entity.NewDeletionSaga("expense", []uuid.UUID{uuid.New()}, ownerID)
	sagaRepo.sagas[saga.ID] = saga

	msg := stagedMessage(t, event.ExpenseDeletedName, ownerID, event.ExpenseDeleted{SagaID: saga.ID})
	msg.SagaID = &saga.ID
	outboxRepo := &fakeOutboxRepo{messages: []*entity.OutboxMessage{msg}}

	relay := newTestRelay(outboxRepo, sagaRepo, &capturePublisher{})
	relay.ProcessNow(context.Background())

	if saga.State != entity.SagaStateAwaitingDependents {
		t.Errorf("expected saga awaiting dependents after publish, got %s", saga.State)
	}
}

func TestRelayLeavesAdvancedSagaAlone(t *testing.T) {
	ownerID := uuid.New()
	sagaRepo := newFakeSagaRepo()
	saga := entity.NewDeletionSaga("expense", []uuid.UUID{uuid.New()}, ownerID)
	saga.MarkAwaitingDependents()
	saga.Resolve()
	sagaRepo.sagas[saga.ID] = saga

	// A republished deleted event must not reopen a resolved saga.
	msg := stagedMessage(t, event.ExpenseDeletedName, ownerID, event.ExpenseDeleted{SagaID: saga.ID})
	msg.SagaID = &saga.ID
	outboxRepo := &fakeOutboxRepo{messages: []*entity.OutboxMessage{msg}}

	relay := newTestRelay(outboxRepo, sagaRepo, &capturePublisher{})
	relay.ProcessNow(context.Background())

	if saga.State != entity.SagaStateResolved {
		t.Errorf("expected resolved saga untouched, got %s", saga.State)
	}
}

func TestRelayRetriesFailedPublish(t *testing.T) {
	msg := stagedMessage(t, event.ExpenseCreatedName, uuid.New(), event.ExpenseCreated{})
	outboxRepo := &fakeOutboxRepo{messages: []*entity.OutboxMessage{msg}}
	publisher := &capturePublisher{publishErr: errors.New("broker down")}

	relay := newTestRelay(outboxRepo, newFakeSagaRepo(), publisher)
	ctx := context.Background()

	relay.ProcessNow(ctx)
	if msg.Status != entity.OutboxStatusPending || msg.Attempts != 1 {
		t.Fatalf("expected pending message with 1 attempt, got %s with %d", msg.Status, msg.Attempts)
	}

	publisher.publishErr = nil
	relay.ProcessNow(ctx)
	if msg.Status != entity.OutboxStatusPublished {
		t.Errorf("expected message published after broker recovery, got %s", msg.Status)
	}
	if len(publisher.published) != 1 {
		t.Errorf("expected one successful publish, got %d", len(publisher.published))
	}
}

func TestRelayParksMessageAfterMaxAttempts(t *testing.T) {
	msg := stagedMessage(t, event.ExpenseCreatedName, uuid.New(), event.ExpenseCreated{})
	outboxRepo := &fakeOutboxRepo{messages: []*entity.OutboxMessage{msg}}
	publisher := &capturePublisher{publishErr: errors.New("broker down")}

	relay := newTestRelay(outboxRepo, newFakeSagaRepo(), publisher)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		relay.ProcessNow(ctx)
	}

	if msg.Status != entity.OutboxStatusFailed {
		t.Errorf("expected message parked as failed, got %s", msg.Status)
	}
	if msg.Attempts != 3 {
		t.Errorf("expected attempts capped at 3, got %d", msg.Attempts)
	}
	if msg.LastError == "" {
		t.Error("expected last error recorded")
	}
}

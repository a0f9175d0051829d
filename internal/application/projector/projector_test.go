package projector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	"github.com/finance-tracker/eventcore/internal/domain/entity"
	"github.com/finance-tracker/eventcore/internal/domain/event"
)

// logCapture records emitted log records so tests can assert on levels.
type logCapture struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *logCapture) Enabled(context.Context, slog.Level) bool { return true }

func (h *logCapture) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *logCapture) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *logCapture) WithGroup(string) slog.Handler      { return h }

func (h *logCapture) has(level slog.Level, message string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if r.Level == level && r.Message == message {
			return true
		}
	}
	return false
}

func captureLogs(t *testing.T) *logCapture {
	t.Helper()
	capture := &logCapture{}
	previous := slog.Default()
	slog.SetDefault(slog.New(capture))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return capture
}

// capturePublisher records published envelopes instead of reaching a broker.
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

func (p *capturePublisher) byName(name string) []event.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	var matched []event.Envelope
	for _, env := range p.published {
		if env.EventName == name {
			matched = append(matched, env)
		}
	}
	return matched
}

// fakeAggregateRepo is an in-memory adapter.AggregateRepository.
type fakeAggregateRepo struct {
	aggs    map[string]*entity.MonthlyAggregate
	entries map[uuid.UUID]*entity.AggregateEntry
	staged  []*entity.OutboxMessage

	findEntryErr error
}

func newFakeAggregateRepo() *fakeAggregateRepo {
	return &fakeAggregateRepo{
		aggs:    make(map[string]*entity.MonthlyAggregate),
		entries: make(map[uuid.UUID]*entity.AggregateEntry),
	}
}

func aggKey(ownerID uuid.UUID, year, month int) string {
	return fmt.Sprintf("%s|%d|%d", ownerID, year, month)
}

func (r *fakeAggregateRepo) LoadOrCreate(ctx context.Context, ownerID uuid.UUID, year, month int) (*entity.MonthlyAggregate, error) {
	if agg, ok := r.aggs[aggKey(ownerID, year, month)]; ok {
		copied := *agg
		return &copied, nil
	}
	return entity.NewMonthlyAggregate(ownerID, year, month), nil
}

func (r *fakeAggregateRepo) FindEntry(ctx context.Context, sourceID uuid.UUID) (*entity.AggregateEntry, error) {
	if r.findEntryErr != nil {
		return nil, r.findEntryErr
	}
	if entry, ok := r.entries[sourceID]; ok {
		copied := *entry
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeAggregateRepo) SaveWithEntry(ctx context.Context, agg *entity.MonthlyAggregate, entry *entity.AggregateEntry, outbox *entity.OutboxMessage) error {
	r.aggs[aggKey(agg.OwnerID, agg.Year, agg.Month)] = agg
	r.entries[entry.SourceID] = entry
	if outbox != nil {
		r.staged = append(r.staged, outbox)
	}
	return nil
}

func (r *fakeAggregateRepo) SaveWithTombstone(ctx context.Context, agg *entity.MonthlyAggregate, sourceID uuid.UUID, outbox *entity.OutboxMessage) error {
	r.aggs[aggKey(agg.OwnerID, agg.Year, agg.Month)] = agg
	if entry, ok := r.entries[sourceID]; ok {
		entry.Deleted = true
	}
	if outbox != nil {
		r.staged = append(r.staged, outbox)
	}
	return nil
}

func (r *fakeAggregateRepo) SaveTombstone(ctx context.Context, entry *entity.AggregateEntry) error {
	if _, ok := r.entries[entry.SourceID]; ok {
		return nil
	}
	r.entries[entry.SourceID] = entry
	return nil
}

func (r *fakeAggregateRepo) FindByPeriods(ctx context.Context, ownerID uuid.UUID, periods []adapter.Period) ([]*entity.MonthlyAggregate, error) {
	var found []*entity.MonthlyAggregate
	for _, period := range periods {
		if agg, ok := r.aggs[aggKey(ownerID, period.Year, period.Month)]; ok {
			found = append(found, agg)
		}
	}
	return found, nil
}

func (r *fakeAggregateRepo) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	for key, agg := range r.aggs {
		if agg.OwnerID == ownerID {
			delete(r.aggs, key)
		}
	}
	for id, entry := range r.entries {
		if entry.OwnerID == ownerID {
			delete(r.entries, id)
		}
	}
	return nil
}

// fakeDashboardRepo is an in-memory adapter.DashboardRepository.
type fakeDashboardRepo struct {
	caches map[uuid.UUID]*entity.DashboardCache
	items  map[uuid.UUID]*entity.DashboardItem

	itemsBySourceErr error
}

func newFakeDashboardRepo() *fakeDashboardRepo {
	return &fakeDashboardRepo{
		caches: make(map[uuid.UUID]*entity.DashboardCache),
		items:  make(map[uuid.UUID]*entity.DashboardItem),
	}
}

func (r *fakeDashboardRepo) LoadOrCreate(ctx context.Context, ownerID uuid.UUID) (*entity.DashboardCache, error) {
	if cache, ok := r.caches[ownerID]; ok {
		copied := *cache
		copied.ItemIDs = append([]uuid.UUID(nil), cache.ItemIDs...)
		return &copied, nil
	}
	return entity.NewDashboardCache(ownerID), nil
}

func (r *fakeDashboardRepo) ItemExistsBySource(ctx context.Context, sourceID uuid.UUID) (bool, error) {
	for _, item := range r.items {
		if item.SourceID == sourceID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDashboardRepo) SaveWithItem(ctx context.Context, cache *entity.DashboardCache, item *entity.DashboardItem, evictedIDs []uuid.UUID) error {
	r.caches[cache.OwnerID] = cache
	r.items[item.ID] = item
	for _, id := range evictedIDs {
		delete(r.items, id)
	}
	return nil
}

func (r *fakeDashboardRepo) ItemsBySource(ctx context.Context, ownerID uuid.UUID, sourceIDs []uuid.UUID) ([]*entity.DashboardItem, error) {
	if r.itemsBySourceErr != nil {
		return nil, r.itemsBySourceErr
	}
	var found []*entity.DashboardItem
	for _, sourceID := range sourceIDs {
		for _, item := range r.items {
			if item.OwnerID == ownerID && item.SourceID == sourceID && !item.Deleted {
				found = append(found, item)
			}
		}
	}
	return found, nil
}

func (r *fakeDashboardRepo) SaveRemovingItems(ctx context.Context, cache *entity.DashboardCache, itemIDs []uuid.UUID) error {
	r.caches[cache.OwnerID] = cache
	for _, id := range itemIDs {
		if item, ok := r.items[id]; ok {
			item.Deleted = true
		}
	}
	return nil
}

func (r *fakeDashboardRepo) SaveItemTombstones(ctx context.Context, items []*entity.DashboardItem) error {
	for _, item := range items {
		if exists, _ := r.ItemExistsBySource(ctx, item.SourceID); exists {
			continue
		}
		r.items[item.ID] = item
	}
	return nil
}

func (r *fakeDashboardRepo) liveItems() []*entity.DashboardItem {
	var live []*entity.DashboardItem
	for _, item := range r.items {
		if !item.Deleted {
			live = append(live, item)
		}
	}
	return live
}

func (r *fakeDashboardRepo) Save(ctx context.Context, cache *entity.DashboardCache) error {
	r.caches[cache.OwnerID] = cache
	return nil
}

func (r *fakeDashboardRepo) FindItems(ctx context.Context, itemIDs []uuid.UUID) ([]*entity.DashboardItem, error) {
	var found []*entity.DashboardItem
	for _, id := range itemIDs {
		if item, ok := r.items[id]; ok {
			found = append(found, item)
		}
	}
	return found, nil
}

func (r *fakeDashboardRepo) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	delete(r.caches, ownerID)
	for id, item := range r.items {
		if item.OwnerID == ownerID {
			delete(r.items, id)
		}
	}
	return nil
}

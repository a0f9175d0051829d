package mock

import (
	"context"
	"sync"

	"github.com/finance-tracker/eventcore/internal/domain/event"
)

// Bus is an in-memory stand-in for the broker publisher. Published envelopes
// are captured so scenario steps can hand them to the consumers explicitly.
type Bus struct {
	mu        sync.Mutex
	envelopes []event.Envelope
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Publish(ctx context.Context, env event.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.envelopes = append(b.envelopes, env)
	return nil
}

func (b *Bus) Close() error { return nil }

// Drain returns the captured envelopes and clears the buffer.
func (b *Bus) Drain() []event.Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	drained := b.envelopes
	b.envelopes = nil
	return drained
}

func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.envelopes = nil
}

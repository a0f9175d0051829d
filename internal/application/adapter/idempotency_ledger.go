package adapter

import (
	"context"

	"github.com/google/uuid"
)

// IdempotencyLedger deduplicates retried write commands at the API
// boundary. Keys are supplied by the caller per logical operation, so
// retries of the same intent reuse the same key.
type IdempotencyLedger interface {
	// Begin returns the cached response for key+owner when the command
	// already succeeded once within the TTL window.
	Begin(ctx context.Context, key string, ownerID uuid.UUID) (response []byte, found bool, err error)

	// Commit stores the successful response under the key with a TTL.
	// Failed commands never commit, so a genuine retry re-executes.
	Commit(ctx context.Context, key string, ownerID uuid.UUID, response []byte) error
}

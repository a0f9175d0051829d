// Package idempotency implements the command dedup ledger on Redis.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
)

// redisLedger implements the adapter.IdempotencyLedger interface. Entries
// expire after the TTL, which bounds the dedup window and the key space.
type redisLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLedger creates a new Redis-backed idempotency ledger.
func NewRedisLedger(client *redis.Client, ttl time.Duration) adapter.IdempotencyLedger {
	return &redisLedger{
		client: client,
		ttl:    ttl,
	}
}

// Begin returns the cached response when the command already succeeded once
// within the TTL window.
func (l *redisLedger) Begin(ctx context.Context, key string, ownerID uuid.UUID) ([]byte, bool, error) {
	value, err := l.client.Get(ctx, ledgerKey(key, ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	return value, true, nil
}

// Commit stores the successful response under the key. Failed commands
// never commit, so a genuine retry re-executes.
func (l *redisLedger) Commit(ctx context.Context, key string, ownerID uuid.UUID, response []byte) error {
	if err := l.client.Set(ctx, ledgerKey(key, ownerID), response, l.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}

// ledgerKey scopes keys per owner so two owners can reuse the same literal
// key without colliding.
func ledgerKey(key string, ownerID uuid.UUID) string {
	return fmt.Sprintf("idempotency:%s:%s", ownerID, key)
}

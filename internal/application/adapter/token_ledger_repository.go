package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// TokenLedgerRepository stores the metered per-owner token budget. Both
// methods run a single-owner database transaction, which is the only
// locking the ledger needs.
type TokenLedgerRepository interface {
	// EnsureAndRefill loads the owner's ledger (creating it on first access)
	// and applies the once-per-period refill when the month rolled over.
	EnsureAndRefill(ctx context.Context, ownerID uuid.UUID, now time.Time) (*entity.TokenLedger, error)

	// Settle debits the measured usage, floored at zero.
	Settle(ctx context.Context, ownerID uuid.UUID, used int64) error

	// DeleteByOwner removes the ledger when the account is closed.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// TokenLedger tracks the consumable per-owner AI-token budget. The balance
// is never negative at any externally observable instant.
type TokenLedger struct {
	OwnerID          uuid.UUID
	Balance          int64
	PlanID           string
	LastRefillPeriod string // "YYYY-MM" marker, one refill per calendar month
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewTokenLedger creates a ledger for an owner with the plan's full
// allotment for the current period.
func NewTokenLedger(ownerID uuid.UUID, planID string, allotment int64, now time.Time) *TokenLedger {
	return &TokenLedger{
		OwnerID:          ownerID,
		Balance:          allotment,
		PlanID:           planID,
		LastRefillPeriod: PeriodOf(now),
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}
}

// RefillIfNewPeriod adds the plan allotment once when the calendar month has
// rolled over since the last refill. The stored period marker makes a second
// invocation within the same period a no-op; no locking is involved.
func (l *TokenLedger) RefillIfNewPeriod(now time.Time, allotment int64) bool {
	period := PeriodOf(now)
	if period == l.LastRefillPeriod {
		return false
	}
	l.Balance += allotment
	l.LastRefillPeriod = period
	l.UpdatedAt = now.UTC()
	return true
}

// Debit subtracts used tokens, floored at zero. Usage beyond the remaining
// balance is absorbed, never carried as debt.
func (l *TokenLedger) Debit(used int64) {
	if used <= 0 {
		return
	}
	l.Balance -= used
	if l.Balance < 0 {
		l.Balance = 0
	}
	l.UpdatedAt = time.Now().UTC()
}

// PeriodOf formats a time as the ledger's "YYYY-MM" billing period marker.
func PeriodOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}

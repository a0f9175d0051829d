package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BreakdownEntry is one slice of a per-dimension breakdown (category,
// trigger or mood). The sum of entry amounts for a dimension always equals
// the aggregate's TotalAmount for that dimension.
type BreakdownEntry struct {
	Name   string          `json:"name"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthlyAggregate is the derived per-owner, per-month financial read model.
// It is rebuildable by replaying all events for its key.
type MonthlyAggregate struct {
	OwnerID       uuid.UUID
	Year          int
	Month         int
	TotalAmount   decimal.Decimal
	TotalCount    int
	Categories    []BreakdownEntry
	Triggers      []BreakdownEntry
	Moods         []BreakdownEntry
	LastAppliedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewMonthlyAggregate creates an empty aggregate for the given period.
func NewMonthlyAggregate(ownerID uuid.UUID, year, month int) *MonthlyAggregate {
	now := time.Now().UTC()
	return &MonthlyAggregate{
		OwnerID:     ownerID,
		Year:        year,
		Month:       month,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Add applies the additive path of the aggregate update algorithm: totals
// are incremented and a breakdown entry per present dimension value is
// found-or-appended and incremented.
func (a *MonthlyAggregate) Add(amount decimal.Decimal, category string, triggers []string, mood string) {
	a.TotalAmount = a.TotalAmount.Add(amount)
	a.TotalCount++

	if category != "" {
		a.Categories = addBreakdown(a.Categories, category, amount)
	}
	for _, trigger := range triggers {
		a.Triggers = addBreakdown(a.Triggers, trigger, amount)
	}
	if mood != "" {
		a.Moods = addBreakdown(a.Moods, mood, amount)
	}
}

// Remove mirrors Add with decrements. Breakdown entries whose count reaches
// zero are removed entirely rather than left as zero rows.
func (a *MonthlyAggregate) Remove(amount decimal.Decimal, category string, triggers []string, mood string) {
	a.TotalAmount = a.TotalAmount.Sub(amount)
	if a.TotalCount > 0 {
		a.TotalCount--
	}

	if category != "" {
		a.Categories = removeBreakdown(a.Categories, category, amount)
	}
	for _, trigger := range triggers {
		a.Triggers = removeBreakdown(a.Triggers, trigger, amount)
	}
	if mood != "" {
		a.Moods = removeBreakdown(a.Moods, mood, amount)
	}
}

func addBreakdown(entries []BreakdownEntry, name string, amount decimal.Decimal) []BreakdownEntry {
	for i := range entries {
		if entries[i].Name == name {
			entries[i].Count++
			entries[i].Amount = entries[i].Amount.Add(amount)
			return entries
		}
	}
	return append(entries, BreakdownEntry{Name: name, Count: 1, Amount: amount})
}

func removeBreakdown(entries []BreakdownEntry, name string, amount decimal.Decimal) []BreakdownEntry {
	for i := range entries {
		if entries[i].Name != name {
			continue
		}
		entries[i].Count--
		entries[i].Amount = entries[i].Amount.Sub(amount)
		if entries[i].Count <= 0 {
			return append(entries[:i], entries[i+1:]...)
		}
		return entries
	}
	return entries
}

// AggregateEntry is the per-source detail row kept alongside the monthly
// aggregate. Its existence is the dedup check for redelivered events, and
// it records exactly what was folded in so the fold can be reversed.
// A Deleted entry is a tombstone: the source was unfolded, or its deletion
// arrived before its creation, and it must never be folded again.
type AggregateEntry struct {
	SourceID   uuid.UUID
	OwnerID    uuid.UUID
	SourceType string // "expense" or "income"
	Amount     decimal.Decimal
	Category   string
	Triggers   []string
	Mood       string
	Year       int
	Month      int
	Deleted    bool
	CreatedAt  time.Time
}

package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardItemResponse is one entry of the recent-items list.
type DashboardItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	SourceID    uuid.UUID       `json:"sourceId"`
	SourceType  string          `json:"sourceType"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// DashboardSnapshotResponse is the embedded current-period snapshot.
type DashboardSnapshotResponse struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalCount  int             `json:"totalCount"`
	AppliedAt   time.Time       `json:"appliedAt"`
}

// DashboardResponse represents the dashboard query response.
type DashboardResponse struct {
	RecentItems []DashboardItemResponse   `json:"recentItems"`
	Snapshot    DashboardSnapshotResponse `json:"snapshot"`
}

// BreakdownResponse is one slice of a per-dimension breakdown.
type BreakdownResponse struct {
	Name   string          `json:"name"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// AggregateResponse is one monthly aggregate in API responses.
type AggregateResponse struct {
	Year        int                 `json:"year"`
	Month       int                 `json:"month"`
	TotalAmount decimal.Decimal     `json:"totalAmount"`
	TotalCount  int                 `json:"totalCount"`
	Categories  []BreakdownResponse `json:"categories,omitempty"`
	Triggers    []BreakdownResponse `json:"triggers,omitempty"`
	Moods       []BreakdownResponse `json:"moods,omitempty"`
}

// AggregatesResponse represents the aggregates query response.
type AggregatesResponse struct {
	Aggregates []AggregateResponse `json:"aggregates"`
}

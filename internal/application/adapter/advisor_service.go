package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/eventcore/internal/domain/entity"
)

// AdviceRequest is the input for a metered AI advice call.
type AdviceRequest struct {
	OwnerID    uuid.UUID
	Question   string
	Aggregates []*entity.MonthlyAggregate
}

// AdviceResult carries the answer and the token usage measured by the model
// after the operation completed; the ledger settles against TokensUsed.
type AdviceResult struct {
	Answer     string
	TokensUsed int64
}

// AdvisorService defines the interface for the AI spending advisor.
type AdvisorService interface {
	Generate(ctx context.Context, request *AdviceRequest) (*AdviceResult, error)

	// IsAvailable checks if the advisor is configured.
	IsAvailable() bool
}

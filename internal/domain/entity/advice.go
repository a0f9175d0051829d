package entity

import (
	"time"

	"github.com/google/uuid"
)

// AdviceLog records a completed AI advice interaction and the token usage
// it was settled with.
type AdviceLog struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Question   string
	Answer     string
	Topics     []string // category names the advice touched on
	TokensUsed int64
	CreatedAt  time.Time
}

// NewAdviceLog creates a new AdviceLog entry.
func NewAdviceLog(ownerID uuid.UUID, question, answer string, topics []string, tokensUsed int64) *AdviceLog {
	return &AdviceLog{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Question:   question,
		Answer:     answer,
		Topics:     topics,
		TokensUsed: tokensUsed,
		CreatedAt:  time.Now().UTC(),
	}
}

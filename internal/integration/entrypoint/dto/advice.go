package dto

// AdviceRequest represents the request body for an advice question.
type AdviceRequest struct {
	Question string `json:"question" binding:"required"`
}

// AdviceResponse represents the advisor's answer.
type AdviceResponse struct {
	Answer     string `json:"answer"`
	TokensUsed int64  `json:"tokensUsed"`
}

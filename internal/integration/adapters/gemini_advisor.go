// Package adapters provides implementations for external service integrations.
package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/finance-tracker/eventcore/internal/application/adapter"
	domainerror "github.com/finance-tracker/eventcore/internal/domain/error"
)

// GeminiAdvisor implements the AdvisorService using Google Gemini. Token
// usage is taken from the model's own usage metadata after the call, so the
// ledger settles against measured consumption rather than an estimate.
type GeminiAdvisor struct {
	apiKey    string
	modelName string
}

// NewGeminiAdvisor creates a new Gemini advisor instance.
func NewGeminiAdvisor(apiKey string) *GeminiAdvisor {
	return &GeminiAdvisor{
		apiKey:    apiKey,
		modelName: "gemini-2.5-flash-lite",
	}
}

// IsAvailable checks if the advisor is properly configured.
func (s *GeminiAdvisor) IsAvailable() bool {
	return s.apiKey != ""
}

// Generate answers a spending question grounded on the owner's monthly
// aggregates and reports the tokens the call consumed.
func (s *GeminiAdvisor) Generate(ctx context.Context, request *adapter.AdviceRequest) (*adapter.AdviceResult, error) {
	if !s.IsAvailable() {
		return nil, domainerror.ErrAdvisorUnavailable
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(s.modelName)
	model.SetTemperature(0.4)

	resp, err := model.GenerateContent(ctx, genai.Text(s.buildPrompt(request)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	answer := extractText(resp)
	if answer == "" {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var tokensUsed int64
	if resp.UsageMetadata != nil {
		tokensUsed = int64(resp.UsageMetadata.TotalTokenCount)
	}

	return &adapter.AdviceResult{
		Answer:     answer,
		TokensUsed: tokensUsed,
	}, nil
}

// buildPrompt creates the prompt for Gemini.
func (s *GeminiAdvisor) buildPrompt(request *adapter.AdviceRequest) string {
	var sb strings.Builder

	sb.WriteString(`You are a personal finance advisor. Answer the user's question using only the monthly spending summaries below. Be concrete and refer to the numbers. If the data does not support an answer, say so.

MONTHLY SUMMARIES:
`)

	for _, agg := range request.Aggregates {
		sb.WriteString(fmt.Sprintf("\n%04d-%02d: total %s across %d records\n",
			agg.Year, agg.Month, agg.TotalAmount.StringFixed(2), agg.TotalCount))
		for _, c := range agg.Categories {
			sb.WriteString(fmt.Sprintf("  - category %s: %s (%d records)\n",
				c.Name, c.Amount.StringFixed(2), c.Count))
		}
		for _, t := range agg.Triggers {
			sb.WriteString(fmt.Sprintf("  - trigger %s: %s (%d records)\n",
				t.Name, t.Amount.StringFixed(2), t.Count))
		}
		for _, m := range agg.Moods {
			sb.WriteString(fmt.Sprintf("  - mood %s: %s (%d records)\n",
				m.Name, m.Amount.StringFixed(2), m.Count))
		}
	}

	sb.WriteString("\nQUESTION:\n")
	sb.WriteString(request.Question)

	return sb.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}

// Package gemini provides the Google Gemini text-generation client backing
// the AI stock advisory.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"finance_linebot/internal/feature/advisor/usecase"
	"finance_linebot/internal/shared/fetcherr"
)

const (
	// DefaultModel is the Gemini model used for advisory generation.
	DefaultModel = "gemini-2.5-flash"
)

// Analyzer generates advisory text via the Gemini API.
type Analyzer struct {
	client *genai.Client
	model  string
}

// Compile-time check that Analyzer satisfies the usecase contract.
var _ usecase.Analyzer = (*Analyzer)(nil)

// NewAnalyzer creates an Analyzer authenticated with the given API key.
func NewAnalyzer(ctx context.Context, apiKey string) (*Analyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Analyzer{client: client, model: DefaultModel}, nil
}

// Analyze generates a completion for the prompt. Quota rejections surface as
// fetcherr.ErrQuotaExceeded so the dialogue layer can answer "try later"
// instead of leaking a transport error.
func (g *Analyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("gemini rate limited: %w", fetcherr.ErrQuotaExceeded)
		}
		return "", fmt.Errorf("gemini API request failed: %w", fetcherr.ErrUpstreamUnavailable)
	}
	return resp.Text(), nil
}

// isQuotaError recognizes the API's rate-limit rejections.
func isQuotaError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "429")
}

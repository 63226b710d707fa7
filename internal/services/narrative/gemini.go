package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"FundLens/internal/domain/models"
	dservice "FundLens/internal/domain/service"
)

// Gemini implements NarrativeGenerator against the Gemini API. Any failure
// (network, timeout, empty completion) is reported as a NarrativeError so
// the orchestrator can substitute the rule-based rationale.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini-backed narrative generator.
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (dservice.NarrativeGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("narrative: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("narrative: create client: %w", err)
	}
	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

// Generate requests a one-paragraph rationale for the scored analysis.
func (g *Gemini) Generate(ctx context.Context, snap *models.TickerSnapshot, score *models.Score, action models.Action) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: systemInstruction},
			},
		},
	}

	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(BuildPrompt(snap, score, action)),
		config,
	)
	if err != nil {
		return "", &models.NarrativeError{Err: err}
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", &models.NarrativeError{Err: fmt.Errorf("empty completion")}
	}
	return text, nil
}

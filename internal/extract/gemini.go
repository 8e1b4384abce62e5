package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/winlog/internal/domain"
	"google.golang.org/genai"
)

// Gemini extracts with Google's Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini extractor. baseURL overrides the API endpoint when set.
func NewGemini(ctx context.Context, apiKey, baseURL, model string, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

// Extract implements Extractor.
func (g *Gemini) Extract(ctx context.Context, text string) domain.Extraction {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(BuildPrompt(text)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		slog.Warn("Gemini extraction failed", "model", g.model, "error", err)
		return domain.Extraction{}
	}

	result, ok := ParseResponse(resp.Text())
	if !ok {
		slog.Warn("Failed to parse model response", "provider", "gemini", "model", g.model)
	}
	return result
}

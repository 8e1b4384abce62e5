// Package extract pulls the physical win and social highlight out of free text
// with a hosted language model.
//
// Extraction never fails from the caller's point of view: transport errors and
// unreadable model output both produce an empty result.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ashureev/winlog/internal/config"
	"github.com/ashureev/winlog/internal/domain"
)

// Extractor turns a transcription into a two-field result.
type Extractor interface {
	Extract(ctx context.Context, text string) domain.Extraction
}

const systemPrompt = "You are a helpful assistant."

// JSON keys the prompt asks the model for.
const (
	keyPhysicalWin     = "Physical Win"
	keySocialHighlight = "Social Highlight"
)

// BuildPrompt returns the fixed instruction prompt wrapped around text.
func BuildPrompt(text string) string {
	return fmt.Sprintf(`Extract the following details from the transcription:
1. Physical Win (any achievement related to fitness or physical activities).
2. Social Highlight (any notable social event, interaction, or highlight).
Return the result as a JSON object with keys %q and %q.
Transcription: %q`, keyPhysicalWin, keySocialHighlight, text)
}

// ParseResponse decodes the model's reply. Anything that is not a JSON object
// yields the empty extraction.
func ParseResponse(raw string) (domain.Extraction, bool) {
	raw = stripFence(strings.TrimSpace(raw))
	if raw == "" {
		return domain.Extraction{}, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return domain.Extraction{}, false
	}

	return domain.Extraction{
		PhysicalWin:     pick(obj, keyPhysicalWin, "physical_win"),
		SocialHighlight: pick(obj, keySocialHighlight, "social_highlight"),
	}, true
}

func pick(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// New selects the extractor configured by cfg.
func New(cfg config.ExtractConfig) (Extractor, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.Timeout), nil
	case config.ProviderGemini:
		return NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown extraction provider %q", cfg.Provider)
	}
}

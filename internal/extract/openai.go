package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/winlog/internal/domain"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI extracts with a chat completion against any OpenAI-compatible API.
type OpenAI struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI creates an OpenAI extractor. An empty baseURL uses the public API.
func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &OpenAI{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
	}
}

// Extract implements Extractor.
func (o *OpenAI) Extract(ctx context.Context, text string) domain.Extraction {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildPrompt(text)),
		},
	})
	if err != nil {
		slog.Warn("OpenAI extraction failed", "model", o.model, "error", err)
		return domain.Extraction{}
	}
	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI extraction returned no choices", "model", o.model)
		return domain.Extraction{}
	}

	result, ok := ParseResponse(resp.Choices[0].Message.Content)
	if !ok {
		slog.Warn("Failed to parse model response", "provider", "openai", "model", o.model)
	}
	return result
}

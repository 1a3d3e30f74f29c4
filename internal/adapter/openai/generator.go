// Package openai adapts any OpenAI-compatible chat completion API (OpenAI,
// LM Studio, vLLM) to the single-shot generator used by the ask feature.
package openai

import (
	"context"
	"log/slog"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// FallbackAnswer is returned when the completion carries no text.
const FallbackAnswer = "No answer returned from the model."

type Generator struct {
	client *goopenai.Client
	model  string
}

// NewGenerator targets api.openai.com unless baseURL is set. Local servers
// accept any key, so an empty apiKey is allowed.
func NewGenerator(apiKey, baseURL, model string) *Generator {
	if apiKey == "" {
		apiKey = "not-needed"
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Generator{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	slog.DebugContext(ctx, "creating chat completion", "model", g.model, "length", len(prompt))
	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "chat completion failed", "model", g.model, "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return FallbackAnswer, nil
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return FallbackAnswer, nil
	}
	return text, nil
}

func (g *Generator) Model() string {
	return g.model
}

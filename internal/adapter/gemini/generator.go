package gemini

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// FallbackAnswer is returned when the model responds without any text.
const FallbackAnswer = "No answer returned from Gemini."

type Generator struct {
	client *genai.Client
	model  string
}

func NewGenerator(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Generator, error) {
	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{client: client, model: model}, nil
}

// Generate sends prompt as a single user turn. Upstream errors are returned
// as-is so callers can surface the upstream message.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	slog.DebugContext(ctx, "generating content", "model", g.model, "length", len(prompt))
	m := g.client.GenerativeModel(g.model)
	res, err := m.GenerateContent(ctx, genai.Text(prompt))
	// A blocked candidate or prompt carries no text; answer with the fallback.
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		slog.WarnContext(ctx, "generation blocked", "model", g.model, "reason", blocked.Error())
		return FallbackAnswer, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "model", g.model, "error", err)
		return "", err
	}

	text := strings.TrimSpace(responseText(res))
	if text == "" {
		return FallbackAnswer, nil
	}
	return text, nil
}

func (g *Generator) Model() string {
	return g.model
}

func (g *Generator) Close() error {
	return g.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 {
		return ""
	}
	c := res.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, p := range c.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"google.golang.org/api/option"

	"notesqa/features/ask"
	"notesqa/internal/adapter/gemini"
	"notesqa/internal/adapter/openai"
	"notesqa/internal/config"
	"notesqa/internal/corpus"
	"notesqa/internal/querylog"
)

type Dependencies struct {
	Corpus    *corpus.Corpus
	Generator ask.Generator
	QueryLog  *querylog.Logger

	closers []io.Closer
}

// Bootstrap performs every startup step that must succeed before a listener
// exists. It never retries: a missing notes file aborts startup.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	c, err := corpus.Load(cfg.NotesPath, cfg.AttachmentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	deps := &Dependencies{Corpus: c}

	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		deps.Generator = openai.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ModelName)
	case config.ProviderGemini:
		var opts []option.ClientOption
		if cfg.GeminiEndpoint != "" {
			opts = append(opts, option.WithEndpoint(cfg.GeminiEndpoint))
		}
		g, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.ModelName, opts...)
		if err != nil {
			return nil, fmt.Errorf("gemini client error: %w", err)
		}
		deps.Generator = g
		deps.closers = append(deps.closers, g)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.LLMProvider)
	}
	slog.Info("model client initialized", "provider", cfg.LLMProvider, "model", cfg.ModelName)

	if cfg.QueryLogPath != "" {
		ql, err := querylog.NewFile(cfg.QueryLogPath)
		if err != nil {
			slog.Warn("failed to create query logger, query log disabled", "path", cfg.QueryLogPath, "error", err)
		} else {
			deps.QueryLog = ql
			deps.closers = append(deps.closers, ql)
		}
	}

	return deps, nil
}

func (d *Dependencies) Close() {
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close dependency", "error", err)
		}
	}
}

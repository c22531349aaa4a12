// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/propverify/internal/secrets"
	"github.com/pdiddy/propverify/pkg/types"
)

// NewBackend returns the backend selected by cfg. The "none" backend (or an
// empty one) yields a nil Backend, which Summarize treats as pass-through.
// Missing API keys fall back to the secrets directory.
func NewBackend(ctx context.Context, cfg types.SummarizerConfig, sec secrets.Secrets, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case "", types.SummarizerNone:
		return nil, nil
	case types.SummarizerClaude:
		key := sec.Or(cfg.APIKey, secrets.AnthropicAPIKey)
		if key == "" {
			return nil, fmt.Errorf("claude backend: no API key configured")
		}
		return &ClaudeBackend{
			APIKey:    key,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Client:    &http.Client{Timeout: cfg.Timeout},
			Logger:    logger.Named("summarize.claude"),
		}, nil
	case types.SummarizerGemini:
		g, err := NewGeminiBackend(ctx, GeminiOptions{
			APIKey:    sec.Or(cfg.APIKey, secrets.GeminiAPIKey),
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		}, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown summarizer backend %q", cfg.Backend)
	}
}

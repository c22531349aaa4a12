// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiBackend asks a Gemini model for the conclusion paragraph.
type GeminiBackend struct {
	client    *genai.Client
	model     string
	maxTokens int32
	logger    *zap.Logger
}

// GeminiOptions configures NewGeminiBackend.
type GeminiOptions struct {
	APIKey    string
	Model     string
	MaxTokens int

	// BaseURL overrides the API endpoint. Tests point it at a local server.
	BaseURL string
}

// NewGeminiBackend creates a Gemini API client.
func NewGeminiBackend(ctx context.Context, opts GeminiOptions, logger *zap.Logger) (*GeminiBackend, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &GeminiBackend{
		client:    client,
		model:     model,
		maxTokens: int32(maxTokens),
		logger:    logger.Named("summarize.gemini"),
	}, nil
}

// Conclude sends the conclusion prompt and returns the response text.
func (g *GeminiBackend) Conclude(ctx context.Context, req Request) (string, error) {
	prompt, err := renderPrompt(req)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.2),
		MaxOutputTokens: g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Gemini API returned no text")
	}

	g.logger.Info("conclusion generated",
		zap.String("model", g.model),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/pdiddy/insight-engine/internal/retry"
	"github.com/pdiddy/insight-engine/pkg/types"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient calls the Gemini API through the official SDK.
type GeminiClient struct {
	cfg    types.AIConfig
	client *genai.Client
}

// NewGeminiClient constructs the SDK client.
func NewGeminiClient(ctx context.Context, cfg types.AIConfig) (*GeminiClient, error) {
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiClient{cfg: cfg, client: client}, nil
}

// Complete sends one generation request. The SDK surfaces rate limits as
// errors mentioning the status, which the retry wrapper's message pattern
// classifies.
func (g *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string, jsonOnly bool) (string, error) {
	config := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if jsonOnly {
		config.ResponseMIMEType = "application/json"
	}

	return retry.Do(ctx, func() (string, error) {
		result, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(userPrompt), config)
		if err != nil {
			return "", fmt.Errorf("calling Gemini API: %w", err)
		}
		text := result.Text()
		if text == "" {
			return "", fmt.Errorf("Gemini API returned no text content")
		}
		return text, nil
	}, retry.Options{MaxRetries: g.cfg.MaxRetries})
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package completion abstracts the completion service behind a single
// Completer capability. Two backends implement it: the Anthropic Messages
// API and the Gemini API. Both share the generic retry wrapper for
// transient failures.
package completion

import (
	"context"
	"fmt"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// Completer maps a prompt pair to text. When jsonOnly is set the backend is
// asked to constrain the response to a single JSON document; callers must
// still treat the result as untrusted text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, jsonOnly bool) (string, error)
}

// New selects a backend from cfg.Provider ("claude" or "gemini"). An
// unknown provider or missing API key is a configuration error.
func New(ctx context.Context, cfg types.AIConfig) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key for provider %q", cfg.Provider)
	}
	switch cfg.Provider {
	case "", "claude":
		return NewClaudeClient(cfg), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

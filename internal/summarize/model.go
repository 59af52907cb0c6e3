// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"google.golang.org/genai"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// claudeDefaultMaxTokens applies when the configuration sets no
// max_tokens param; the Anthropic API requires an explicit value.
const claudeDefaultMaxTokens = 2048

// NewModel builds the chat model for cfg.Provider. Provider names match
// case-insensitively; anything but openai, claude, or gemini fails here,
// before any scraping or store work starts.
func NewModel(ctx context.Context, cfg types.SummarizationConfig, apiKey string) (Generator, error) {
	params, err := ParseParams(cfg.Param)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		m, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			Model:  cfg.ModelName,
			APIKey: apiKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating openai model: %w", err)
		}
		return m, nil

	case "claude":
		maxTokens := claudeDefaultMaxTokens
		if params.MaxTokens != nil {
			maxTokens = *params.MaxTokens
		}
		m, err := claude.NewChatModel(ctx, &claude.Config{
			APIKey:    apiKey,
			Model:     cfg.ModelName,
			MaxTokens: maxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("creating claude model: %w", err)
		}
		return m, nil

	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		m, err := gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  cfg.ModelName,
		})
		if err != nil {
			return nil, fmt.Errorf("creating gemini model: %w", err)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported summarization provider %q", cfg.Provider)
	}
}

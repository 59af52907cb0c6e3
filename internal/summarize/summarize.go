// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize produces model-generated digests of extracted paper
// text through a configurable chat-model provider.
// Implements: prd003-summarization (R1-R5).
package summarize

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const defaultMaxRetries = 3

// Generator is the slice of a chat model the summarizer uses. Tests supply
// a scripted implementation.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Params is the validated set of provider generation parameters.
type Params struct {
	Temperature *float32
	MaxTokens   *int
	TopP        *float32
}

// ParseParams validates a free-form param mapping from configuration.
// Recognized keys are temperature, max_tokens, and top_p; api_key is
// accepted here but resolved separately. Any other key is rejected before
// a model call is made.
func ParseParams(raw map[string]any) (Params, error) {
	var p Params
	for key, value := range raw {
		switch key {
		case "temperature":
			f, err := toFloat32(value)
			if err != nil {
				return Params{}, fmt.Errorf("param temperature: %w", err)
			}
			p.Temperature = &f
		case "max_tokens":
			n, err := toInt(value)
			if err != nil {
				return Params{}, fmt.Errorf("param max_tokens: %w", err)
			}
			p.MaxTokens = &n
		case "top_p":
			f, err := toFloat32(value)
			if err != nil {
				return Params{}, fmt.Errorf("param top_p: %w", err)
			}
			p.TopP = &f
		case "api_key":
			if _, ok := value.(string); !ok {
				return Params{}, fmt.Errorf("param api_key must be a string, got %T", value)
			}
		default:
			return Params{}, fmt.Errorf("unsupported summarization param %q", key)
		}
	}
	return p, nil
}

// APIKeyParam returns the api_key entry of a raw param mapping, or "".
func APIKeyParam(raw map[string]any) string {
	if v, ok := raw["api_key"].(string); ok {
		return v
	}
	return ""
}

// modelOptions converts the parsed params into per-call model options.
func (p Params) modelOptions() []model.Option {
	var opts []model.Option
	if p.Temperature != nil {
		opts = append(opts, model.WithTemperature(*p.Temperature))
	}
	if p.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*p.MaxTokens))
	}
	if p.TopP != nil {
		opts = append(opts, model.WithTopP(*p.TopP))
	}
	return opts
}

// Options holds the per-run summarization settings.
type Options struct {
	Prefix     string
	Suffix     string
	Params     Params
	MaxRetries int
}

// OptionsFromConfig validates cfg and builds the run options.
func OptionsFromConfig(cfg types.SummarizationConfig) (Options, error) {
	params, err := ParseParams(cfg.Param)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Prefix:     cfg.Prefix,
		Suffix:     cfg.Suffix,
		Params:     params,
		MaxRetries: cfg.MaxRetries,
	}, nil
}

// Frame wraps content in the configured prefix and suffix, skipping empty
// parts, with blank lines between them.
func Frame(prefix, suffix, content string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{prefix, content, suffix} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n\n")
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Summarize sends the framed content to the model as a single user message
// and returns the trimmed completion. Failed calls and empty completions
// are retried with exponential backoff up to opts.MaxRetries times.
func Summarize(ctx context.Context, m Generator, opts Options, content string) (string, error) {
	messages := []*schema.Message{{
		Role:    schema.User,
		Content: Frame(opts.Prefix, opts.Suffix, content),
	}}
	genOpts := opts.Params.modelOptions()

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := m.Generate(ctx, messages, genOpts...)
		if err != nil {
			lastErr = err
			continue
		}
		summary := strings.TrimSpace(resp.Content)
		if summary == "" {
			lastErr = fmt.Errorf("model returned an empty summary")
			continue
		}
		return summary, nil
	}
	return "", fmt.Errorf("summarization failed after %d retries: %w", maxRetries, lastErr)
}

func toFloat32(v any) (float32, error) {
	switch n := v.(type) {
	case float32:
		return n, nil
	case float64:
		return float32(n), nil
	case int:
		return float32(n), nil
	case int64:
		return float32(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

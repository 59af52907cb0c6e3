// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// fakeModel scripts Generate outcomes per call and records the prompts
// it was given.
type fakeModel struct {
	failures int    // number of leading calls that error
	empties  int    // number of calls after failures that return ""
	response string // returned once failures and empties are spent
	calls    int
	prompts  []string
}

func (f *fakeModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.calls++
	if len(input) > 0 {
		f.prompts = append(f.prompts, input[len(input)-1].Content)
	}
	if f.calls <= f.failures {
		return nil, fmt.Errorf("api error on call %d", f.calls)
	}
	if f.calls <= f.failures+f.empties {
		return &schema.Message{Role: schema.Assistant, Content: "  "}, nil
	}
	return &schema.Message{Role: schema.Assistant, Content: f.response}, nil
}

func quickBackoff(t *testing.T) {
	t.Helper()
	orig := backoffBase
	backoffBase = time.Millisecond
	t.Cleanup(func() { backoffBase = orig })
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		wantErr bool
		check   func(t *testing.T, p Params)
	}{
		{
			name: "temperature float",
			raw:  map[string]any{"temperature": 0.2},
			check: func(t *testing.T, p Params) {
				if p.Temperature == nil || *p.Temperature != 0.2 {
					t.Errorf("Temperature = %v", p.Temperature)
				}
			},
		},
		{
			name: "temperature integer",
			raw:  map[string]any{"temperature": 1},
			check: func(t *testing.T, p Params) {
				if p.Temperature == nil || *p.Temperature != 1 {
					t.Errorf("Temperature = %v", p.Temperature)
				}
			},
		},
		{
			name: "max_tokens int",
			raw:  map[string]any{"max_tokens": 500},
			check: func(t *testing.T, p Params) {
				if p.MaxTokens == nil || *p.MaxTokens != 500 {
					t.Errorf("MaxTokens = %v", p.MaxTokens)
				}
			},
		},
		{
			name: "max_tokens whole float",
			raw:  map[string]any{"max_tokens": float64(500)},
			check: func(t *testing.T, p Params) {
				if p.MaxTokens == nil || *p.MaxTokens != 500 {
					t.Errorf("MaxTokens = %v", p.MaxTokens)
				}
			},
		},
		{
			name:    "max_tokens fractional",
			raw:     map[string]any{"max_tokens": 10.5},
			wantErr: true,
		},
		{
			name: "top_p",
			raw:  map[string]any{"top_p": 0.9},
			check: func(t *testing.T, p Params) {
				if p.TopP == nil || *p.TopP != 0.9 {
					t.Errorf("TopP = %v", p.TopP)
				}
			},
		},
		{
			name: "api_key passes through without landing in params",
			raw:  map[string]any{"api_key": "sk-test", "temperature": 0.5},
			check: func(t *testing.T, p Params) {
				if p.Temperature == nil {
					t.Error("temperature should still parse")
				}
			},
		},
		{
			name:    "api_key wrong type",
			raw:     map[string]any{"api_key": 42},
			wantErr: true,
		},
		{
			name:    "unknown key rejected",
			raw:     map[string]any{"frequency_penalty": 0.5},
			wantErr: true,
		},
		{
			name:    "temperature wrong type",
			raw:     map[string]any{"temperature": "hot"},
			wantErr: true,
		},
		{
			name: "nil map",
			raw:  nil,
			check: func(t *testing.T, p Params) {
				if p.Temperature != nil || p.MaxTokens != nil || p.TopP != nil {
					t.Errorf("expected zero params, got %+v", p)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseParams(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseParams: %v", err)
			}
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestAPIKeyParam(t *testing.T) {
	if got := APIKeyParam(map[string]any{"api_key": "sk-abc"}); got != "sk-abc" {
		t.Errorf("APIKeyParam = %q, want %q", got, "sk-abc")
	}
	if got := APIKeyParam(map[string]any{"temperature": 0.1}); got != "" {
		t.Errorf("APIKeyParam = %q, want empty", got)
	}
	if got := APIKeyParam(nil); got != "" {
		t.Errorf("APIKeyParam(nil) = %q, want empty", got)
	}
}

func TestFrame(t *testing.T) {
	tests := []struct {
		name                    string
		prefix, suffix, content string
		want                    string
	}{
		{
			name:   "all parts",
			prefix: "Summarize this paper:", content: "BODY", suffix: "Keep it short.",
			want: "Summarize this paper:\n\nBODY\n\nKeep it short.",
		},
		{
			name:    "no prefix",
			content: "BODY", suffix: "Short.",
			want: "BODY\n\nShort.",
		},
		{
			name:   "no suffix",
			prefix: "Summarize:", content: "BODY",
			want: "Summarize:\n\nBODY",
		},
		{
			name:    "content only",
			content: "BODY",
			want:    "BODY",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Frame(tt.prefix, tt.suffix, tt.content)
			if got != tt.want {
				t.Errorf("Frame = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarizeSuccess(t *testing.T) {
	m := &fakeModel{response: "  A concise summary.  "}
	opts := Options{Prefix: "Summarize:", Suffix: "Be brief."}

	got, err := Summarize(context.Background(), m, opts, "paper text")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "A concise summary." {
		t.Errorf("summary = %q", got)
	}
	if m.calls != 1 {
		t.Errorf("calls = %d, want 1", m.calls)
	}
	prompt := m.prompts[0]
	for _, part := range []string{"Summarize:", "paper text", "Be brief."} {
		if !strings.Contains(prompt, part) {
			t.Errorf("prompt missing %q: %q", part, prompt)
		}
	}
	if strings.Index(prompt, "Summarize:") > strings.Index(prompt, "paper text") {
		t.Error("prefix should precede content in prompt")
	}
}

func TestSummarizeRetriesThenSucceeds(t *testing.T) {
	quickBackoff(t)
	m := &fakeModel{failures: 2, response: "recovered"}

	got, err := Summarize(context.Background(), m, Options{MaxRetries: 3}, "text")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "recovered" {
		t.Errorf("summary = %q", got)
	}
	if m.calls != 3 {
		t.Errorf("calls = %d, want 3", m.calls)
	}
}

func TestSummarizeRetriesEmptyCompletion(t *testing.T) {
	quickBackoff(t)
	m := &fakeModel{empties: 1, response: "eventually"}

	got, err := Summarize(context.Background(), m, Options{MaxRetries: 3}, "text")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "eventually" {
		t.Errorf("summary = %q", got)
	}
	if m.calls != 2 {
		t.Errorf("calls = %d, want 2", m.calls)
	}
}

func TestSummarizeExhaustsRetries(t *testing.T) {
	quickBackoff(t)
	m := &fakeModel{failures: 100}

	_, err := Summarize(context.Background(), m, Options{MaxRetries: 2}, "text")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	// One initial call plus MaxRetries retries.
	if m.calls != 3 {
		t.Errorf("calls = %d, want 3", m.calls)
	}
	if !strings.Contains(err.Error(), "after 2 retries") {
		t.Errorf("error = %v", err)
	}
}

func TestSummarizeContextCancelled(t *testing.T) {
	m := &fakeModel{failures: 100}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Summarize(ctx, m, Options{MaxRetries: 5}, "text")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if m.calls != 1 {
		t.Errorf("calls = %d, want 1 before cancellation", m.calls)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := types.SummarizationConfig{
		Prefix:     "P",
		Suffix:     "S",
		MaxRetries: 5,
		Param:      map[string]any{"temperature": 0.3},
	}
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if opts.Prefix != "P" || opts.Suffix != "S" || opts.MaxRetries != 5 {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Params.Temperature == nil {
		t.Error("temperature param not carried through")
	}
}

func TestOptionsFromConfigBadParam(t *testing.T) {
	cfg := types.SummarizationConfig{Param: map[string]any{"bogus": true}}
	if _, err := OptionsFromConfig(cfg); err == nil {
		t.Fatal("expected error for unsupported param")
	}
}

func TestNewModelUnsupportedProvider(t *testing.T) {
	cfg := types.SummarizationConfig{Provider: "cohere", ModelName: "command-r"}
	_, err := NewModel(context.Background(), cfg, "key")
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
	if !strings.Contains(err.Error(), "unsupported summarization provider") {
		t.Errorf("error = %v", err)
	}
}

func TestNewModelRejectsBadParams(t *testing.T) {
	cfg := types.SummarizationConfig{
		Provider: "openai",
		Param:    map[string]any{"presence_penalty": 0.1},
	}
	if _, err := NewModel(context.Background(), cfg, "key"); err == nil {
		t.Fatal("expected param validation error")
	}
}

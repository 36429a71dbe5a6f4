// Package llm provides the reasoning backends used by the review pipeline.
//
// Every backend takes a system instruction and a user message and returns
// free-form text. Transport failures are reported as *upstream.Error so the
// pipeline can name the failing backend and the reason.
package llm

import (
	"context"
	"time"
)

// Prompt is one request to a reasoning backend.
type Prompt struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// Result is the cleaned response of a backend call.
type Result struct {
	Backend          string        `json:"backend"`
	Model            string        `json:"model"`
	Text             string        `json:"text"`
	Latency          time.Duration `json:"latency"`
	PromptTokens     int           `json:"prompt_tokens,omitempty"`
	CompletionTokens int           `json:"completion_tokens,omitempty"`
}

// Options configures a backend. Zero values fall back to per-backend defaults.
type Options struct {
	APIKey      string        `mapstructure:"api_key" json:"-"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Model       string        `mapstructure:"model" json:"model"`
	Temperature float64       `mapstructure:"temperature" json:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" json:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
}

type Generator interface {
	Name() string
	Generate(ctx context.Context, p Prompt) (*Result, error)
	IsAvailable(ctx context.Context) error
}

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 4096
	defaultTimeout     = 120 * time.Second
)

func (o Options) withDefaults(model string) Options {
	if o.Model == "" {
		o.Model = model
	}
	if o.Temperature == 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Timeout == 0 {
		o.Timeout = defaultTimeout
	}
	return o
}

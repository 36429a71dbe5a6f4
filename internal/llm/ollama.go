package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/erenakay1/CV-Analizer/internal/postprocess"
	"github.com/erenakay1/CV-Analizer/internal/upstream"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.2"
)

type OllamaGenerator struct {
	opts   Options
	client *http.Client
}

func NewOllamaGenerator(opts Options) *OllamaGenerator {
	opts = opts.withDefaults(defaultOllamaModel)
	if opts.BaseURL == "" {
		opts.BaseURL = defaultOllamaBaseURL
	}
	return &OllamaGenerator{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

func (g *OllamaGenerator) Name() string {
	return "ollama"
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system"`
	Prompt  string         `json:"prompt"`
	Format  string         `json:"format,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func (g *OllamaGenerator) Generate(ctx context.Context, p Prompt) (*Result, error) {
	result := &Result{Backend: g.Name(), Model: g.opts.Model}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	jsonData, err := json.Marshal(ollamaRequest{
		Model:   g.opts.Model,
		System:  p.System,
		Prompt:  p.User,
		Format:  "json",
		Stream:  false,
		Options: map[string]any{"temperature": g.opts.Temperature, "num_predict": g.opts.MaxTokens},
	})
	if err != nil {
		return result, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(g.opts.BaseURL, "/")+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return result, upstream.FromTransport(g.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result, upstream.FromStatus(g.Name(), resp.StatusCode)
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return result, upstream.New(upstream.Network, g.Name(), fmt.Errorf("failed to decode response: %w", err))
	}

	result.Text = postprocess.Clean(ollamaResp.Response)
	result.PromptTokens = ollamaResp.PromptEvalCount
	result.CompletionTokens = ollamaResp.EvalCount
	return result, nil
}

func (g *OllamaGenerator) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(g.opts.BaseURL, "/")+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not available: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}

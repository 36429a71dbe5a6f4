package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/erenakay1/CV-Analizer/internal/postprocess"
	"github.com/erenakay1/CV-Analizer/internal/upstream"
)

const (
	defaultOpenAIBaseURL     = "https://api.openai.com/v1"
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "openai/gpt-4o-mini"
)

// OpenAIGenerator talks to any OpenAI-compatible /chat/completions endpoint.
type OpenAIGenerator struct {
	name    string
	opts    Options
	headers map[string]string
	client  *http.Client
}

func NewOpenAIGenerator(opts Options) *OpenAIGenerator {
	opts = opts.withDefaults(DefaultModel)
	if opts.BaseURL == "" {
		opts.BaseURL = defaultOpenAIBaseURL
	}
	return &OpenAIGenerator{
		name:   "openai",
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// NewOpenRouterGenerator is an OpenAIGenerator pointed at OpenRouter.
func NewOpenRouterGenerator(opts Options) *OpenAIGenerator {
	opts = opts.withDefaults(defaultOpenRouterModel)
	if opts.BaseURL == "" {
		opts.BaseURL = defaultOpenRouterBaseURL
	}
	return &OpenAIGenerator{
		name: "openrouter",
		opts: opts,
		headers: map[string]string{
			"HTTP-Referer": "https://github.com/erenakay1/CV-Analizer",
			"X-Title":      "cvadvisor",
		},
		client: &http.Client{Timeout: opts.Timeout},
	}
}

func (g *OpenAIGenerator) Name() string {
	return g.name
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (g *OpenAIGenerator) Generate(ctx context.Context, p Prompt) (*Result, error) {
	result := &Result{Backend: g.Name(), Model: g.opts.Model}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if g.opts.APIKey == "" {
		return result, fmt.Errorf("%s: API key required", g.name)
	}

	body := chatRequest{
		Model: g.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		Temperature:    g.opts.Temperature,
		MaxTokens:      g.opts.MaxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return result, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(g.opts.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.opts.APIKey)
	for k, v := range g.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return result, upstream.FromTransport(g.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		ue := upstream.FromStatus(g.name, resp.StatusCode)
		ue.Err = fmt.Errorf("%s", strings.TrimSpace(string(snippet)))
		return result, ue
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return result, upstream.New(upstream.Network, g.name, fmt.Errorf("failed to decode response: %w", err))
	}
	if len(chatResp.Choices) == 0 {
		return result, upstream.New(upstream.Empty, g.name, fmt.Errorf("no choices in response"))
	}

	if chatResp.Model != "" {
		result.Model = chatResp.Model
	}
	result.Text = postprocess.Clean(chatResp.Choices[0].Message.Content)
	result.PromptTokens = chatResp.Usage.PromptTokens
	result.CompletionTokens = chatResp.Usage.CompletionTokens
	return result, nil
}

func (g *OpenAIGenerator) IsAvailable(ctx context.Context) error {
	if g.opts.APIKey == "" {
		return fmt.Errorf("%s: API key required", g.name)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(g.opts.BaseURL, "/")+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.opts.APIKey)
	resp, err := g.client.Do(req)
	if err != nil {
		return upstream.FromTransport(g.name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return upstream.FromStatus(g.name, resp.StatusCode)
	}
	return nil
}

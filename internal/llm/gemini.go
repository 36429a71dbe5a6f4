package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/erenakay1/CV-Analizer/internal/postprocess"
	"github.com/erenakay1/CV-Analizer/internal/upstream"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	client *genai.Client
	opts   Options
}

func NewGeminiGenerator(ctx context.Context, opts Options) (*GeminiGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	opts = opts.withDefaults(defaultGeminiModel)

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: opts.Timeout},
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{client: client, opts: opts}, nil
}

func (g *GeminiGenerator) Name() string {
	return "gemini"
}

func (g *GeminiGenerator) Generate(ctx context.Context, p Prompt) (*Result, error) {
	result := &Result{Backend: g.Name(), Model: g.opts.Model}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.System, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.opts.Temperature)),
		MaxOutputTokens:   int32(g.opts.MaxTokens),
		ResponseMIMEType:  "application/json",
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.opts.Model, genai.Text(p.User), config)
	if err != nil {
		return result, classifyGeminiError(err)
	}

	result.Text = postprocess.Clean(resp.Text())
	if resp.UsageMetadata != nil {
		result.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return result, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		ue := upstream.FromStatus("gemini", apiErr.Code)
		ue.Err = err
		return ue
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		ue := upstream.FromStatus("gemini", apiErrPtr.Code)
		ue.Err = err
		return ue
	}
	return upstream.FromTransport("gemini", err)
}

func (g *GeminiGenerator) IsAvailable(ctx context.Context) error {
	if g.client == nil {
		return fmt.Errorf("gemini client not initialised")
	}
	return nil
}

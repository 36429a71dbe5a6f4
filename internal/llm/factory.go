package llm

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by New.
const (
	BackendOpenAI     = "openai"
	BackendOpenRouter = "openrouter"
	BackendOllama     = "ollama"
	BackendGemini     = "gemini"
)

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendOpenAI, BackendOpenRouter, BackendOllama, BackendGemini}
}

// New constructs the named backend.
func New(ctx context.Context, backend string, opts Options) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendOpenAI, "":
		return NewOpenAIGenerator(opts), nil
	case BackendOpenRouter:
		return NewOpenRouterGenerator(opts), nil
	case BackendOllama:
		return NewOllamaGenerator(opts), nil
	case BackendGemini:
		return NewGeminiGenerator(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown llm backend %q (want one of %s)", backend, strings.Join(Backends(), ", "))
	}
}

// RequiresKey reports whether backend needs an API key.
func RequiresKey(backend string) bool {
	return strings.ToLower(strings.TrimSpace(backend)) != BackendOllama
}

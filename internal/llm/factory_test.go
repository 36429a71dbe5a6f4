package llm

import (
	"context"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		backend  string
		opts     Options
		wantName string
		wantErr  bool
	}{
		{"", Options{}, "openai", false},
		{"openai", Options{}, "openai", false},
		{"OpenRouter", Options{}, "openrouter", false},
		{"ollama", Options{}, "ollama", false},
		{"gemini", Options{}, "", true},
		{"claude", Options{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			g, err := New(context.Background(), tt.backend, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for backend %q", tt.backend)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.Name() != tt.wantName {
				t.Errorf("expected %q, got %q", tt.wantName, g.Name())
			}
		})
	}
}

func TestRequiresKey(t *testing.T) {
	if RequiresKey("ollama") {
		t.Error("ollama should not require a key")
	}
	for _, b := range []string{"openai", "openrouter", "gemini"} {
		if !RequiresKey(b) {
			t.Errorf("%s should require a key", b)
		}
	}
}

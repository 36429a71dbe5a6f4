package chunker_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/erenakay1/CV-Analizer/internal/chunker"
)

// --- Truncate tests ---

func TestTruncate_ShortText(t *testing.T) {
	text := "Jane Doe, Software Engineer."
	got, cut := chunker.Truncate(text, 100)
	if cut {
		t.Error("expected no truncation")
	}
	if got != text {
		t.Errorf("expected %q, got %q", text, got)
	}
}

func TestTruncate_Unlimited(t *testing.T) {
	text := strings.Repeat("word ", 500)
	got, cut := chunker.Truncate(text, 0)
	if cut || got != text {
		t.Error("expected text unchanged when maxChars=0")
	}
}

func TestTruncate_ParagraphBoundary(t *testing.T) {
	text := "EXPERIENCE\nBackend developer at Acme.\n\nEDUCATION\nBSc Computer Science."
	got, cut := chunker.Truncate(text, 50)
	if !cut {
		t.Fatal("expected truncation")
	}
	if got != "EXPERIENCE\nBackend developer at Acme." {
		t.Errorf("expected cut at paragraph, got %q", got)
	}
}

func TestTruncate_SentenceBoundary(t *testing.T) {
	text := "First sentence ends here. Second sentence follows. Third sentence."
	got, cut := chunker.Truncate(text, 40)
	if !cut {
		t.Fatal("expected truncation")
	}
	if got != "First sentence ends here." {
		t.Errorf("expected cut after first sentence, got %q", got)
	}
}

func TestTruncate_WordBoundary(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	got, _ := chunker.Truncate(text, 20)
	if utf8.RuneCountInString(got) > 20 {
		t.Errorf("result longer than limit: %q", got)
	}
	if strings.HasSuffix(got, "fi") || strings.HasSuffix(got, " ") {
		t.Errorf("expected whole words, got %q", got)
	}
}

func TestTruncate_HardCut(t *testing.T) {
	text := strings.Repeat("x", 30)
	got, cut := chunker.Truncate(text, 10)
	if !cut || got != strings.Repeat("x", 10) {
		t.Errorf("expected hard cut, got %q", got)
	}
}

func TestTruncate_MultibyteSafe(t *testing.T) {
	text := strings.Repeat("ğüşöçİ", 10)
	got, _ := chunker.Truncate(text, 7)
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}
	if utf8.RuneCountInString(got) != 7 {
		t.Errorf("expected 7 runes, got %d", utf8.RuneCountInString(got))
	}
}

// --- Preview tests ---

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{"shorter than limit", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdef", 3, "abc"},
		{"runes", "İstanbul", 2, "İs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chunker.Preview(tt.text, tt.n); got != tt.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
			}
		})
	}
}

func TestPreview_Default(t *testing.T) {
	text := strings.Repeat("a", 1000)
	if got := chunker.Preview(text, 0); len(got) != chunker.DefaultPreviewChars {
		t.Errorf("expected default preview of %d chars, got %d", chunker.DefaultPreviewChars, len(got))
	}
}

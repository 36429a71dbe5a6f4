// Package chunker shortens long texts before they are sent to a reasoning
// backend or recorded in a trace. Cuts prefer paragraph and sentence
// boundaries so that a truncated document or a previous stage output still
// reads as whole sentences.
package chunker

import (
	"strings"
	"unicode"
)

const (
	// DefaultPreviewChars is the length of output previews recorded in
	// pipeline trace entries.
	DefaultPreviewChars = 400

	// DefaultContextChars caps the previous producer output that is fed back
	// into a retry prompt.
	DefaultContextChars = 2000
)

// Truncate returns text shortened to at most maxChars unicode code points and
// reports whether anything was removed. The cut is attempted (in order of
// preference) at:
//  1. Paragraph boundaries (\n\n or \r\n\r\n)
//  2. Sentence-ending punctuation (. ! ?)
//  3. Whitespace (word boundary)
//  4. Hard cut at maxChars if no suitable boundary is found
//
// If maxChars ≤ 0 it is treated as unlimited.
func Truncate(text string, maxChars int) (string, bool) {
	if maxChars <= 0 || len([]rune(text)) <= maxChars {
		return text, false
	}
	split := findSplit(text, maxChars)
	return strings.TrimSpace(text[:split]), true
}

// Preview returns the first n code points of text, cut without looking for a
// boundary. Used for log and trace previews.
func Preview(text string, n int) string {
	if n <= 0 {
		n = DefaultPreviewChars
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// findSplit returns the byte index within text at which to split, aiming for
// at most maxChars runes. It searches backwards from maxChars for the best
// split boundary.
func findSplit(text string, maxChars int) int {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return len(text)
	}

	candidate := runes[:maxChars]
	prefix := string(candidate)

	// 1. Paragraph boundary.
	if idx := strings.LastIndex(prefix, "\n\n"); idx > 0 {
		return idx
	}
	if idx := strings.LastIndex(prefix, "\r\n\r\n"); idx > 0 {
		return idx
	}

	// 2. Sentence-ending punctuation followed by a space.
	for i := len(candidate) - 2; i > 0; i-- {
		r := candidate[i]
		if (r == '.' || r == '!' || r == '?') && unicode.IsSpace(candidate[i+1]) {
			return len(string(candidate[:i+1]))
		}
	}

	// 3. Whitespace word boundary.
	for i := len(candidate) - 1; i > 0; i-- {
		if unicode.IsSpace(candidate[i]) {
			return len(string(candidate[:i]))
		}
	}

	// 4. Hard cut.
	return len(prefix)
}

// Package postprocess removes common LLM artifacts from reasoning-stage output.
//
// It is applied to the raw text returned by every reasoning backend (OpenAI,
// OpenRouter, Ollama, Gemini) before the text is stored on the pipeline state
// or handed to the artifact decoder.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text in three phases and returns the
// trimmed result:
//  1. Invisible prefix removal (BOM, zero-width space)
//  2. Thinking / reasoning block removal
//  3. Chat preamble removal ("Here is the analysis:")
func Clean(text string) string {
	text = removeInvisiblePrefix(text)
	text = removeThinkingBlocks(text)
	text = removeChatPreamble(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: invisible prefix ---

func removeInvisiblePrefix(text string) string {
	return strings.TrimLeft(text, "\ufeff\u200b")
}

// --- Phase 2: thinking blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 3: chat preamble ---

// preamblePatterns match introductory sentences that chat models prepend to a
// JSON answer. Each is anchored to the start of the string and must end in a
// colon so that prose inside a JSON value is never touched.
var preamblePatterns = []*regexp.Regexp{
	// "Here is / Here's [the] [detailed|updated|final] [analysis|review|JSON|result] [in JSON format]:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the| my)? (?:detailed |updated |final |complete )?(?:analysis|review|evaluation|optimization|json|result|response|output)(?: in json(?: format)?)?\s*:`),
	// "Certainly / Sure / Of course[,] here is ...:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]?\s+here(?:'s| is)[^:\n]{0,80}:`),
	// "JSON:" / "Output:"
	regexp.MustCompile(`(?i)^(?:json|output|result)\s*:`),
}

func removeChatPreamble(text string) string {
	for _, re := range preamblePatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

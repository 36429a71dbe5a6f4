package postprocess

import "testing"

func TestRemoveThinkingBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no thinking blocks",
			input:    `{"cv_analysis": {"ats_score": 70}}`,
			expected: `{"cv_analysis": {"ats_score": 70}}`,
		},
		{
			name:     "think block before json",
			input:    "<think>The CV lacks an email.</think>{\"a\": 1}",
			expected: `{"a": 1}`,
		},
		{
			name:     "reasoning block",
			input:    "Start<reasoning>Checking sections</reasoning>End",
			expected: "StartEnd",
		},
		{
			name:     "multiple blocks",
			input:    "<thinking>First</thinking>middle<reflection>Second</reflection>",
			expected: "middle",
		},
		{
			name:     "truncated block",
			input:    "{\"a\": 1}<thinking>cut off",
			expected: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := removeThinkingBlocks(tt.input)
			if got != tt.expected {
				t.Errorf("removeThinkingBlocks(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRemoveChatPreamble(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"here is the analysis", "Here is the analysis:\n{\"a\":1}", `{"a":1}`},
		{"here's the json", "Here's the JSON:\n```json\n{}\n```", "```json\n{}\n```"},
		{"in json format", "Here is my review in JSON format: {}", "{}"},
		{"sure prefix", "Sure, here is what I found:\n{}", "{}"},
		{"bare label", "JSON: {}", "{}"},
		{"no preamble", `{"summary": "Here is the analysis: weak"}`, `{"summary": "Here is the analysis: weak"}`},
		{"no colon", "Here is the analysis without a colon", "Here is the analysis without a colon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := removeChatPreamble(tt.input)
			if got != tt.expected {
				t.Errorf("removeChatPreamble(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClean(t *testing.T) {
	input := "\ufeff<think>hmm</think>\nHere is the review:\n{\"critic_review\": {\"approved\": true}}\n"
	want := `{"critic_review": {"approved": true}}`
	if got := Clean(input); got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"{}",
		"```json\n{\"a\": 1}\n```",
		"Here is the analysis: {\"a\": 1}",
	}
	for _, in := range inputs {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

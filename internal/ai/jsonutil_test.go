package ai

import "testing"

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare json object untouched",
			input:    `{"title": "Engineer"}`,
			expected: `{"title": "Engineer"}`,
		},
		{
			name:     "fenced with language tag",
			input:    "```json\n{\"title\": \"Engineer\"}\n```",
			expected: `{"title": "Engineer"}`,
		},
		{
			name:     "fenced without language tag",
			input:    "```\n{\"title\": \"Engineer\"}\n```",
			expected: `{"title": "Engineer"}`,
		},
		{
			name:     "prose around object",
			input:    "Here is the analysis you asked for:\n{\"title\": \"Engineer\"}\nLet me know if you need anything else.",
			expected: `{"title": "Engineer"}`,
		},
		{
			name:     "prose around array",
			input:    "The skills are: [\"go\", \"sql\"] as requested.",
			expected: `["go", "sql"]`,
		},
		{
			name:     "leading and trailing whitespace",
			input:    "\n\n  {\"title\": \"Engineer\"}  \n",
			expected: `{"title": "Engineer"}`,
		},
		{
			name:     "no json passes through",
			input:    "I could not produce an analysis.",
			expected: "I could not produce an analysis.",
		},
		{
			name:     "nested braces keep the outermost object",
			input:    "result: {\"outer\": {\"inner\": 1}} done",
			expected: `{"outer": {"inner": 1}}`,
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanModelJSON(tt.input); got != tt.expected {
				t.Errorf("CleanModelJSON(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

package ai

import "strings"

// CleanModelJSON extracts a JSON document from raw model output.
// Models occasionally wrap JSON in markdown fences or surround it with
// prose even when asked for bare JSON; callers should run responses
// through this before unmarshalling. Returns the input unchanged when
// no JSON object or array can be located.
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Strip a markdown code fence, with or without a language tag.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Cut any prose around the outermost object or array.
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}

// Package jsonparser recovers a JSON object from decorated LLM output.
package jsonparser

import "strings"

// StripFence removes a markdown code fence wrapping the whole text. The fence
// is only stripped when both the opening (```` ``` ```` or `json`-tagged) and
// closing markers are present; anything else passes through unchanged.
func StripFence(content string) string {
	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		inner := strings.TrimPrefix(content, "```json")
		inner = strings.TrimSuffix(inner, "```")
		return strings.TrimSpace(inner)
	}
	if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") && len(content) >= 6 {
		inner := strings.TrimPrefix(content, "```")
		inner = strings.TrimSuffix(inner, "```")
		return strings.TrimSpace(inner)
	}
	return content
}

// ExtractObject returns the first balanced {...} span in text. The scan
// tracks brace depth only and is not string-aware: a literal brace inside a
// JSON string literal desynchronizes it. Providers are prompted for minified
// JSON, which keeps that case out of normal operation.
func ExtractObject(text string) (string, bool) {
	depth := 0
	start := -1

	for i, ch := range text {
		switch ch {
		case '{':
			if depth == 0 && start == -1 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
			if depth == 0 && start != -1 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

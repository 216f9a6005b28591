package common

import (
	"encoding/json"
	"strings"
)

const (
	ssePrefix = "data: "
	sseDone   = "[DONE]"
)

type streamChunk struct {
	Choices []streamChoice `json:"choices"`
}

type streamChoice struct {
	Delta streamDelta `json:"delta"`
}

type streamDelta struct {
	Content *string `json:"content"`
}

// DecodeStream detects an SSE-style event stream and reassembles the logical
// payload from its chunk deltas, in line order. It reports false when the
// text has no "data: " line, or when the stream markers were present but no
// content accumulated (garbage input is not an empty success).
func DecodeStream(text string) (string, bool) {
	var content strings.Builder
	isStreaming := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}
		isStreaming = true

		data := strings.TrimPrefix(line, ssePrefix)
		if data == sseDone {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != nil {
				content.WriteString(*choice.Delta.Content)
			}
		}
	}

	if isStreaming && content.Len() > 0 {
		return content.String(), true
	}
	return "", false
}

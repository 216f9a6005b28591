package common

import "testing"

func TestDecodeStream(t *testing.T) {
	sse := `data: {"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"{\"type\":\"feat\",\"scope\":\"excel\",\"description\":\"新增资金调节表特殊"},"finish_reason":null}]}

data: {"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"识别逻辑\"}"},"finish_reason":null}]}

data: {"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}

data: [DONE]`

	content, ok := DecodeStream(sse)
	if !ok {
		t.Fatal("DecodeStream() did not detect a stream")
	}
	want := `{"type":"feat","scope":"excel","description":"新增资金调节表特殊识别逻辑"}`
	if content != want {
		t.Errorf("DecodeStream() = %q, want %q", content, want)
	}
}

func TestDecodeStreamPreservesChunkOrder(t *testing.T) {
	sse := "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"c\"}}]}\n" +
		"data: [DONE]"

	content, ok := DecodeStream(sse)
	if !ok || content != "abc" {
		t.Errorf("DecodeStream() = %q, %v, want \"abc\", true", content, ok)
	}
}

func TestDecodeStreamIgnoresEmptyDeltas(t *testing.T) {
	sse := "data: {\"choices\":[{\"delta\":{\"content\":\"hello\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n" +
		"data: [DONE]"

	content, ok := DecodeStream(sse)
	if !ok || content != "hello" {
		t.Errorf("DecodeStream() = %q, %v, want \"hello\", true", content, ok)
	}
}

func TestDecodeStreamRejectsNonStream(t *testing.T) {
	normal := `{"choices":[{"message":{"content":"hello"},"finish_reason":"stop"}]}`
	if content, ok := DecodeStream(normal); ok {
		t.Errorf("DecodeStream() detected a stream in a plain response: %q", content)
	}
}

func TestDecodeStreamRejectsEmptyStream(t *testing.T) {
	// Sentinel lines without any content are ambiguous, not an empty success.
	onlyDone := "data: [DONE]"
	if _, ok := DecodeStream(onlyDone); ok {
		t.Error("DecodeStream() accepted a stream with no content")
	}

	garbage := "data: not json at all\ndata: [DONE]"
	if _, ok := DecodeStream(garbage); ok {
		t.Error("DecodeStream() accepted a garbage stream")
	}
}

func TestSignalFromFinishReason(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name   string
		reason *string
		want   SignalKind
	}{
		{"nil is absent", nil, SignalAbsent},
		{"empty is absent", str(""), SignalAbsent},
		{"stop", str("stop"), SignalStop},
		{"stop_sequence", str("stop_sequence"), SignalStop},
		{"length", str("length"), SignalLength},
		{"content_filter", str("content_filter"), SignalContentFiltered},
		{"anything else is unknown", str("tool_calls"), SignalUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SignalFromFinishReason(tt.reason)
			if got.Kind != tt.want {
				t.Errorf("SignalFromFinishReason() kind = %v, want %v", got.Kind, tt.want)
			}
			if tt.want == SignalUnknown && got.Reason != *tt.reason {
				t.Errorf("SignalFromFinishReason() reason = %q, want %q", got.Reason, *tt.reason)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{401, KindAuth},
		{403, KindPermission},
		{429, KindRateLimited},
		{500, KindUpstream},
		{503, KindUpstream},
		{599, KindUpstream},
		{400, KindRequest},
		{404, KindRequest},
		{418, KindRequest},
	}

	for _, tt := range tests {
		if got := ClassifyStatus(tt.status); got != tt.want {
			t.Errorf("ClassifyStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

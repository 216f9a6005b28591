package core

import "fmt"

// TruncatedError reports a generation that still hit the token ceiling on the
// final attempt. Empty marks the degenerate case where every truncated
// attempt produced no text at all.
type TruncatedError struct {
	Empty bool
}

func (e *TruncatedError) Error() string {
	if e.Empty {
		return "AI response was truncated repeatedly, resulting in empty content. Try reducing the diff size or switching models."
	}
	return "AI response was truncated before completing the JSON (finish_reason=length). Try reducing the diff size or switching models."
}

// ContentFilteredError reports a response blocked by the provider's filter.
// It is never retried.
type ContentFilteredError struct{}

func (e *ContentFilteredError) Error() string {
	return "The response was blocked by the provider's content filter."
}

// UnexpectedFinishError surfaces a finish reason outside the known set.
type UnexpectedFinishError struct {
	Reason string
}

func (e *UnexpectedFinishError) Error() string {
	return fmt.Sprintf("Unexpected finish_reason %q from AI response.", e.Reason)
}

// ExtractionError chains the direct-parse failure with the outcome of the
// extraction fallback so both stages stay visible in diagnostics.
type ExtractionError struct {
	Primary error
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("no valid JSON object found in response: %v", e.Primary)
	}
	return fmt.Sprintf("failed to parse extracted JSON: %v (direct parse: %v)", e.Err, e.Primary)
}

func (e *ExtractionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Primary
}

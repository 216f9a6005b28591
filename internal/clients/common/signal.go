package common

// SignalKind classifies why a provider stopped generating.
type SignalKind int

const (
	// SignalAbsent means the provider sent no finish reason at all.
	SignalAbsent SignalKind = iota
	SignalStop
	SignalLength
	SignalContentFiltered
	SignalUnknown
)

// CompletionSignal carries the provider's finish reason. Reason holds the raw
// string only for SignalUnknown.
type CompletionSignal struct {
	Kind   SignalKind
	Reason string
}

// SignalFromFinishReason maps an OpenAI-style finish_reason to a signal.
func SignalFromFinishReason(reason *string) CompletionSignal {
	if reason == nil {
		return CompletionSignal{Kind: SignalAbsent}
	}
	switch *reason {
	case "stop", "stop_sequence":
		return CompletionSignal{Kind: SignalStop}
	case "length":
		return CompletionSignal{Kind: SignalLength}
	case "content_filter":
		return CompletionSignal{Kind: SignalContentFiltered}
	case "":
		return CompletionSignal{Kind: SignalAbsent}
	default:
		return CompletionSignal{Kind: SignalUnknown, Reason: *reason}
	}
}

package common

import "fmt"

// ErrorKind is the closed set of user-safe request failure categories.
type ErrorKind int

const (
	KindAuth ErrorKind = iota
	KindPermission
	KindRateLimited
	KindUpstream
	KindRequest
	KindTransport
)

// ClassifyStatus maps a non-2xx HTTP status to an ErrorKind.
func ClassifyStatus(status int) ErrorKind {
	switch {
	case status == 401:
		return KindAuth
	case status == 403:
		return KindPermission
	case status == 429:
		return KindRateLimited
	case status >= 500 && status <= 599:
		return KindUpstream
	default:
		return KindRequest
	}
}

// RequestError is a sanitized provider request failure. The raw response body
// is never part of the message; it only reaches the debug log.
type RequestError struct {
	Kind     ErrorKind
	Status   int
	Provider string
}

func (e *RequestError) Error() string {
	var msg string
	switch e.Kind {
	case KindAuth:
		msg = "Authentication failed. Please check your API key."
	case KindPermission:
		msg = "Access forbidden. Please check your API permissions."
	case KindRateLimited:
		msg = "Rate limit exceeded. Please try again later."
	case KindUpstream:
		msg = fmt.Sprintf("%s service error. Please try again later.", e.Provider)
	default:
		msg = "Request failed. Please check your configuration."
	}
	return fmt.Sprintf("%s (status %d)", msg, e.Status)
}

// TransportError covers network failures and timeouts before any HTTP status
// is available.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to reach %s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

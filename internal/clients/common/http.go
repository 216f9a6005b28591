package common

import (
	"bytes"
	"net"
	"net/http"
	"time"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

type ClientConfig struct {
	Timeout        time.Duration
	ConnectTimeout time.Duration
	Headers        map[string]string
}

func DefaultConfig() ClientConfig {
	return ClientConfig{
		Timeout:        DefaultTimeout,
		ConnectTimeout: DefaultConnectTimeout,
		Headers:        make(map[string]string),
	}
}

func NewHTTPClient(config ClientConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout: config.ConnectTimeout,
	}
	return &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			DialContext: dialer.DialContext,
		},
	}
}

func NewRequest(method, url string, body []byte, config ClientConfig) (*http.Request, error) {
	req, err := http.NewRequest(method, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	// Set common headers
	for key, value := range config.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// Message is one prompt message in a provider request.
type Message struct {
	Role    string
	Content string
}

// Package anthropic implements the Anthropic messages provider.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"bicommit/internal/clients/common"
)

const (
	providerName     = "Anthropic"
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	config  common.ClientConfig
}

func NewClient(apiKey, model, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	clientConfig := common.DefaultConfig()
	clientConfig.Headers = map[string]string{
		"Content-Type":      "application/json",
		"x-api-key":         apiKey,
		"anthropic-version": anthropicVersion,
	}

	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  common.NewHTTPClient(clientConfig),
		config:  clientConfig,
	}
}

func (c *Client) Name() string { return providerName }

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type response struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Text string `json:"text"`
}

// Send issues one messages request and returns the first content block's
// text. The messages API does not expose a finish reason in this shape, so
// the signal is always stop and the caller's truncation handling never fires
// for this provider.
func (c *Client) Send(ctx context.Context, msgs []common.Message, maxTokens int) (string, common.CompletionSignal, error) {
	none := common.CompletionSignal{Kind: common.SignalAbsent}

	var system string
	wireMsgs := make([]message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == "system" {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		wireMsgs = append(wireMsgs, message{Role: m.Role, Content: m.Content})
	}

	requestBody, err := json.Marshal(request{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  wireMsgs,
	})
	if err != nil {
		return "", none, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := common.NewRequest(http.MethodPost, c.baseURL+"/v1/messages", requestBody, c.config)
	if err != nil {
		return "", none, fmt.Errorf("failed to create request: %w", err)
	}
	req = req.WithContext(ctx)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", none, &common.TransportError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", none, &common.TransportError{Provider: providerName, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Str("body", string(body)).Msg("Anthropic error response")
		return "", none, &common.RequestError{
			Kind:     common.ClassifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Provider: providerName,
		}
	}

	log.Debug().Str("body", string(body)).Msg("Anthropic raw response")

	var envelope response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", none, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(envelope.Content) == 0 {
		return "", none, fmt.Errorf("no content in response")
	}

	return envelope.Content[0].Text, common.CompletionSignal{Kind: common.SignalStop}, nil
}

// Package openai implements the OpenAI-style chat completions provider.
package openai

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
	providerName   = "OpenAI"
	defaultBaseURL = "https://api.openai.com/v1"
	temperature    = 0.7
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
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + apiKey,
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
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float32         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type response struct {
	Choices []choice `json:"choices"`
}

type choice struct {
	Message struct {
		Content *string `json:"content"`
	} `json:"message"`
	FinishReason *string `json:"finish_reason"`
}

// Send issues one chat completions request and returns the assistant text
// plus the completion signal extracted from the response envelope. Bodies
// arriving as SSE streams are reassembled first; a streamed response carries
// an implicit stop signal since its terminal [DONE] marker was seen.
func (c *Client) Send(ctx context.Context, msgs []common.Message, maxTokens int) (string, common.CompletionSignal, error) {
	none := common.CompletionSignal{Kind: common.SignalAbsent}

	wireMsgs := make([]message, 0, len(msgs))
	for _, m := range msgs {
		wireMsgs = append(wireMsgs, message{Role: m.Role, Content: m.Content})
	}

	requestBody, err := json.Marshal(request{
		Model:          c.model,
		Messages:       wireMsgs,
		Temperature:    temperature,
		MaxTokens:      maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", none, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := common.NewRequest(http.MethodPost, c.baseURL+"/chat/completions", requestBody, c.config)
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
		log.Debug().Int("status", resp.StatusCode).Str("body", string(body)).Msg("OpenAI error response")
		return "", none, &common.RequestError{
			Kind:     common.ClassifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Provider: providerName,
		}
	}

	log.Debug().Str("body", string(body)).Msg("OpenAI raw response")

	if streamed, ok := common.DecodeStream(string(body)); ok {
		log.Debug().Msg("Detected SSE streaming response")
		return streamed, common.CompletionSignal{Kind: common.SignalStop}, nil
	}

	var envelope response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", none, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(envelope.Choices) == 0 {
		return "", none, fmt.Errorf("no choices in response")
	}

	first := envelope.Choices[0]
	if first.Message.Content == nil {
		return "", none, fmt.Errorf("response content is null")
	}

	return *first.Message.Content, common.SignalFromFinishReason(first.FinishReason), nil
}

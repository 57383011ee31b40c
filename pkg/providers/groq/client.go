// Package groq implements the chat-completion client for Groq's
// OpenAI-compatible API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/moodmora/edge/pkg/errorsx"
	"github.com/moodmora/edge/pkg/llm"
	"github.com/moodmora/edge/pkg/resilience"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

const (
	minTimeout     = 1 * time.Second
	maxTimeout     = 60 * time.Second
	defaultTimeout = 20 * time.Second
)

type Client struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	HTTP    *http.Client
}

// New builds a Groq client. The call timeout is clamped to [1s,60s];
// zero or negative picks the 20s default.
func New(apiKey string, timeout time.Duration) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		Timeout: clampTimeout(timeout),
	}
}

func (c *Client) Name() string { return "groq" }

func clampTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	if d < minTimeout {
		return minTimeout
	}
	if d > maxTimeout {
		return maxTimeout
	}
	return d
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []llm.Message   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage llm.Usage `json:"usage"`
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	if c.APIKey == "" {
		return llm.Response{}, errorsx.New(errorsx.ReasonLLMMissingAPIKey)
	}

	payload := chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.ResponseFormat != "" {
		payload.ResponseFormat = &responseFormat{Type: req.ResponseFormat}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return llm.Response{}, errorsx.Wrap(err, errorsx.ReasonLLMTransport)
	}

	callCtx, cancel := context.WithTimeout(ctx, clampTimeout(c.Timeout))
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL()+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return llm.Response{}, errorsx.Wrap(err, errorsx.ReasonLLMTransport)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return llm.Response{}, errorsx.Wrap(err, errorsx.ReasonLLMTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		raw, _ := io.ReadAll(resp.Body)
		return llm.Response{}, resilience.RateLimitError{Provider: "groq", Message: string(raw)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return llm.Response{}, llm.TransportError{Provider: "groq", Status: resp.StatusCode, Body: string(raw)}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return llm.Response{}, errorsx.Wrap(err, errorsx.ReasonLLMTransport)
	}
	content := ""
	if len(parsed.Choices) > 0 {
		content = parsed.Choices[0].Message.Content
	}
	return llm.Response{Content: content, Usage: parsed.Usage}, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

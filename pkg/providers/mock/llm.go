// Package mock provides a scripted chat-completion client for tests
// and offline development.
package mock

import (
	"context"
	"sync"

	"github.com/moodmora/edge/pkg/llm"
)

// Step is one scripted completion outcome. Err, when set, wins over
// Content.
type Step struct {
	Content string
	Usage   llm.Usage
	Err     error
}

// Client replays its scripted steps in order, one per Complete call,
// and records every request it receives. The last step repeats once
// the script runs out. Safe for concurrent use.
type Client struct {
	mu       sync.Mutex
	steps    []Step
	calls    int
	requests []llm.Request
}

func NewClient(steps ...Step) *Client {
	if len(steps) == 0 {
		steps = []Step{{Content: `{"suggestions": []}`}}
	}
	return &Client{steps: steps}
}

func (c *Client) Name() string { return "mock_llm" }

func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return llm.Response{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, req)
	i := c.calls
	if i >= len(c.steps) {
		i = len(c.steps) - 1
	}
	c.calls++

	step := c.steps[i]
	if step.Err != nil {
		return llm.Response{}, step.Err
	}
	return llm.Response{Content: step.Content, Usage: step.Usage}, nil
}

// Calls reports how many completions were requested.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Requests returns a copy of all recorded requests.
func (c *Client) Requests() []llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]llm.Request, len(c.requests))
	copy(out, c.requests)
	return out
}

package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/omnillm/omnillm/pkg/llm"
)

// Client implements the llm.Client interface with scripted behavior.
type Client struct {
	mu        sync.Mutex
	responses []string
	nextIdx   int
	err       error
	calls     []llm.ChatRequest
	closed    bool
}

// NewClient creates a new mock client. Without further configuration
// it echoes the last message back.
func NewClient(config llm.ClientConfig) (*Client, error) {
	return &Client{}, nil
}

// WithResponses queues canned responses, returned in order. The last
// one repeats once the queue is exhausted.
func (c *Client) WithResponses(responses ...string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = responses
	c.nextIdx = 0
	return c
}

// WithError makes every subsequent call fail with err.
func (c *Client) WithError(err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	return c
}

// Calls returns a copy of every request seen so far.
func (c *Client) Calls() []llm.ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	calls := make([]llm.ChatRequest, len(c.calls))
	copy(calls, c.calls)
	return calls
}

// ChatCompletion records the request and returns the scripted result.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, nil)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, req)

	if c.err != nil {
		return "", c.err
	}
	if len(c.responses) > 0 {
		resp := c.responses[c.nextIdx]
		if c.nextIdx < len(c.responses)-1 {
			c.nextIdx++
		}
		return resp, nil
	}
	return fmt.Sprintf("mock response to: %s", messages[len(messages)-1].Content), nil
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "mock"
}

// Close marks the client closed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

package llm

import "context"

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Params   Params    `json:"params"`
}

// Client is the interface every provider adapter implements. A client
// translates the canonical request into the vendor's wire format,
// performs the call, and extracts the assistant's reply as plain text.
type Client interface {
	// ChatCompletion performs a chat completion request and returns
	// the generated assistant text.
	ChatCompletion(ctx context.Context, req ChatRequest) (string, error)

	// Provider returns the canonical vendor identifier (e.g. "openai").
	Provider() string

	// Close releases any resources held by the client.
	Close() error
}

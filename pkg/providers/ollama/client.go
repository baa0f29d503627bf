package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/omnillm/omnillm/pkg/llm"
	"github.com/omnillm/omnillm/pkg/providers/internal/transport"
)

// DefaultBaseURL is the endpoint of a locally running Ollama instance.
const DefaultBaseURL = "http://localhost:11434"

// Client implements the llm.Client interface for Ollama
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Ollama client
func NewClient(config llm.ClientConfig) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.EffectiveTimeout()},
		logger:     config.EffectiveLogger(),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message *chatMessage `json:"message"`
}

// ChatCompletion performs a chat completion request against /api/chat.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	body := chatRequest{
		Model:    req.Model,
		Messages: make([]chatMessage, 0, len(messages)),
		Stream:   false,
	}
	for _, msg := range messages {
		body.Messages = append(body.Messages, chatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	status, data, err := transport.PostJSON(ctx, c.httpClient, c.baseURL+"/api/chat", nil, body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", llm.NewProviderError(status, fmt.Sprintf("ollama API error: %s", string(data)))
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", llm.NewParseError(fmt.Sprintf("failed to parse ollama response: %v", err))
	}
	if resp.Message == nil {
		return "", llm.NewParseError("ollama response has no message field")
	}
	return resp.Message.Content, nil
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "ollama"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}

package cohere

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

// DefaultBaseURL is the Cohere API endpoint.
const DefaultBaseURL = "https://api.cohere.ai"

// Client implements the llm.Client interface for Cohere
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Cohere client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.NewAuthError("missing_api_key", "API key is required for Cohere")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.EffectiveTimeout()},
		logger:     config.EffectiveLogger(),
	}, nil
}

type historyEntry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type wireRequest struct {
	Model       string         `json:"model"`
	Message     string         `json:"message"`
	ChatHistory []historyEntry `json:"chat_history,omitempty"`
	Temperature float64        `json:"temperature"`
	MaxTokens   int            `json:"max_tokens"`
	Stream      bool           `json:"stream"`
}

type wireResponse struct {
	Text    string          `json:"text"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// splitHistory converts a conversation into Cohere's chat history plus
// the current message. User and system turns become pending user
// messages; an assistant turn pairs the pending message with its
// "chatbot" reply in the history. The last unpaired user turn is the
// current message; a conversation ending on an assistant reply leaves
// no current message.
func splitHistory(messages []llm.Message) ([]historyEntry, string) {
	var history []historyEntry
	var current string
	pending := false

	for _, msg := range messages {
		if msg.Role == llm.RoleAssistant {
			if pending {
				history = append(history, historyEntry{Role: "user", Message: current})
				pending = false
			}
			history = append(history, historyEntry{Role: "chatbot", Message: msg.Content})
			continue
		}
		if pending {
			history = append(history, historyEntry{Role: "user", Message: current})
		}
		current = msg.Content
		pending = true
	}

	if !pending {
		return history, ""
	}
	return history, current
}

// ChatCompletion performs a chat completion request against /v1/chat.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	history, current := splitHistory(messages)
	if current == "" {
		return "", llm.NewValidationError("empty_current_message",
			"conversation has no current user message")
	}

	body := wireRequest{
		Model:       req.Model,
		Message:     current,
		ChatHistory: history,
		Temperature: llm.FloatOr(req.Params.Temperature, 0.7),
		MaxTokens:   llm.IntOr(req.Params.MaxTokens, 1024),
		Stream:      false,
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	status, data, err := transport.PostJSON(ctx, c.httpClient, c.baseURL+"/v1/chat", headers, body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", llm.NewProviderError(status, fmt.Sprintf("cohere API error: %s", string(data)))
	}

	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", llm.NewParseError(fmt.Sprintf("failed to parse cohere response: %v", err))
	}
	// Cohere reports some failures inside an HTTP 200 body.
	if len(resp.Error) > 0 && resp.Message != "" {
		return "", llm.NewProviderError(status, fmt.Sprintf("cohere API returned error: %s", resp.Message))
	}
	if resp.Text == "" {
		c.logger.Error("cohere response contains no text content")
	}
	return resp.Text, nil
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "cohere"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}

package anthropic

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

const (
	// DefaultBaseURL is the Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"

	// apiVersion is sent on every request unless overridden.
	apiVersion = "2023-06-01"
)

// Client implements the llm.Client interface for Anthropic
type Client struct {
	apiKey     string
	apiVersion string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Anthropic client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.NewAuthError("missing_api_key", "API key is required for Anthropic")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	version := config.APIVersion
	if version == "" {
		version = apiVersion
	}

	return &Client{
		apiKey:     config.APIKey,
		apiVersion: version,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.EffectiveTimeout()},
		logger:     config.EffectiveLogger(),
	}, nil
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	System      string        `json:"system,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	TopK        *int          `json:"top_k,omitempty"`
}

type wireContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type wireResponse struct {
	Content []wireContent `json:"content"`
}

// ChatCompletion performs a chat completion request against /v1/messages.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	body := wireRequest{
		Model:       req.Model,
		MaxTokens:   llm.IntOr(req.Params.MaxTokens, 1000),
		Temperature: llm.FloatOr(req.Params.Temperature, 0.7),
		TopP:        llm.FloatOr(req.Params.TopP, 1.0),
		TopK:        req.Params.TopK,
	}

	// The Messages API takes a single system prompt outside the
	// conversation. The first system message becomes that prompt;
	// any later system messages are demoted to user turns.
	for _, msg := range messages {
		if msg.Role == llm.RoleSystem && body.System == "" {
			body.System = msg.Content
			continue
		}
		role := string(msg.Role)
		if msg.Role == llm.RoleSystem {
			role = string(llm.RoleUser)
		}
		body.Messages = append(body.Messages, wireMessage{Role: role, Content: msg.Content})
	}

	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": c.apiVersion,
	}
	status, data, err := transport.PostJSON(ctx, c.httpClient, c.baseURL+"/v1/messages", headers, body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", llm.NewProviderError(status, fmt.Sprintf("anthropic API error: %s", string(data)))
	}

	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", llm.NewParseError(fmt.Sprintf("failed to parse anthropic response: %v", err))
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() > 0 {
		return text.String(), nil
	}
	if len(resp.Content) > 0 {
		return resp.Content[0].Text, nil
	}
	c.logger.Warn("anthropic response contains no text content")
	return "", nil
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "anthropic"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}

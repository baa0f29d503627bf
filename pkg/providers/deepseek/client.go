package deepseek

import (
	"context"
	"strings"

	deepseek "github.com/cohesion-org/deepseek-go"
	"go.uber.org/zap"

	"github.com/omnillm/omnillm/pkg/llm"
)

// Client implements the llm.Client interface for DeepSeek
type Client struct {
	client *deepseek.Client
	logger *zap.Logger
}

// NewClient creates a new DeepSeek client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.NewAuthError("missing_api_key", "API key is required for DeepSeek")
	}

	opts := []deepseek.Option{deepseek.WithTimeout(config.EffectiveTimeout())}
	if config.BaseURL != "" {
		opts = append(opts, deepseek.WithBaseURL(config.BaseURL))
	}
	client, err := deepseek.NewClientWithOptions(config.APIKey, opts...)
	if err != nil {
		return nil, llm.NewAuthError("client_error", "failed to create DeepSeek client: "+err.Error())
	}

	return &Client{
		client: client,
		logger: config.EffectiveLogger(),
	}, nil
}

// ChatCompletion performs a chat completion request
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	dsReq := &deepseek.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    make([]deepseek.ChatCompletionMessage, 0, len(messages)),
		Temperature: float32(llm.FloatOr(req.Params.Temperature, 0.7)),
		TopP:        float32(llm.FloatOr(req.Params.TopP, 0.9)),
		MaxTokens:   llm.IntOr(req.Params.MaxTokens, 1024),
	}
	for _, msg := range messages {
		dsReq.Messages = append(dsReq.Messages, deepseek.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, dsReq)
	if err != nil {
		return "", convertError(err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.NewParseError("DeepSeek response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// convertError maps SDK errors onto the error taxonomy by message,
// since the SDK does not expose structured error codes.
func convertError(err error) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key") ||
		strings.Contains(lower, "authentication"):
		return &llm.Error{
			Code:       "authentication_error",
			Message:    msg,
			Type:       llm.ErrTypeAuthentication,
			StatusCode: 401,
		}
	default:
		return &llm.Error{
			Code:    "provider_error",
			Message: msg,
			Type:    llm.ErrTypeProvider,
		}
	}
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "deepseek"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}

package openrouter

import (
	"context"
	"errors"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"

	"github.com/omnillm/omnillm/pkg/llm"
)

// Client implements the llm.Client interface for OpenRouter
type Client struct {
	client *openrouter.Client
	logger *zap.Logger
}

// NewClient creates a new OpenRouter client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.NewAuthError("missing_api_key", "API key is required for OpenRouter")
	}

	clientConfig := openrouter.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Client{
		client: openrouter.NewClientWithConfig(*clientConfig),
		logger: config.EffectiveLogger(),
	}, nil
}

// ChatCompletion performs a chat completion request
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	orReq := openrouter.ChatCompletionRequest{
		Model:    req.Model,
		Messages: make([]openrouter.ChatCompletionMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		orReq.Messages = append(orReq.Messages, openrouter.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: openrouter.Content{Text: msg.Content},
		})
	}
	if req.Params.Temperature != nil {
		orReq.Temperature = float32(*req.Params.Temperature)
	}
	if req.Params.TopP != nil {
		orReq.TopP = float32(*req.Params.TopP)
	}
	if req.Params.MaxTokens != nil {
		orReq.MaxTokens = *req.Params.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, orReq)
	if err != nil {
		return "", convertError(err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.NewParseError("OpenRouter response has no choices")
	}
	return resp.Choices[0].Message.Content.Text, nil
}

func convertError(err error) error {
	var apiErr *openrouter.APIError
	if errors.As(err, &apiErr) {
		return &llm.Error{
			Code:       "provider_error",
			Message:    apiErr.Message,
			Type:       llm.ErrTypeProvider,
			StatusCode: apiErr.HTTPStatusCode,
		}
	}
	return &llm.Error{
		Code:    "network_error",
		Message: err.Error(),
		Type:    llm.ErrTypeProvider,
	}
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "openrouter"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}

package openai

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/omnillm/omnillm/pkg/llm"
)

// Client implements the llm.Client interface for OpenAI
type Client struct {
	client *openai.Client
	logger *zap.Logger
}

// NewClient creates a new OpenAI client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.NewAuthError("missing_api_key", "API key is required for OpenAI")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.OrganizationID != "" {
		clientConfig.OrgID = config.OrganizationID
	}
	clientConfig.HTTPClient = &http.Client{Timeout: config.EffectiveTimeout()}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		logger: config.EffectiveLogger(),
	}, nil
}

// ChatCompletion performs a chat completion request
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	openaiReq, err := ConvertRequest(req, c.logger)
	if err != nil {
		return "", err
	}

	resp, err := c.client.CreateChatCompletion(ctx, openaiReq)
	if err != nil {
		return "", convertError(err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.NewParseError("OpenAI response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ConvertRequest translates the canonical request into the SDK's
// request type. Exported so gateways that reuse the OpenAI wire format
// can share the translation.
func ConvertRequest(req llm.ChatRequest, logger *zap.Logger) (openai.ChatCompletionRequest, error) {
	messages, err := llm.FilterMessages(req.Messages, logger)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:            req.Model,
		Messages:         make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature:      float32(llm.FloatOr(req.Params.Temperature, 0.7)),
		TopP:             float32(llm.FloatOr(req.Params.TopP, 1.0)),
		FrequencyPenalty: float32(llm.FloatOr(req.Params.FrequencyPenalty, 0)),
		PresencePenalty:  float32(llm.FloatOr(req.Params.PresencePenalty, 0)),
	}
	lastUser := -1
	for _, msg := range messages {
		openaiReq.Messages = append(openaiReq.Messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
		if msg.Role == llm.RoleUser {
			lastUser = len(openaiReq.Messages) - 1
		}
	}
	// Attachments become image_url parts on the final user turn.
	if len(req.Params.Attachments) > 0 && lastUser >= 0 {
		target := &openaiReq.Messages[lastUser]
		target.MultiContent = []openai.ChatMessagePart{{
			Type: openai.ChatMessagePartTypeText,
			Text: target.Content,
		}}
		target.Content = ""
		for _, uri := range req.Params.Attachments {
			target.MultiContent = append(target.MultiContent, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: uri},
			})
		}
	}
	if maxTokens := llm.IntOr(req.Params.MaxTokens, 0); maxTokens > 0 {
		openaiReq.MaxTokens = maxTokens
	}
	if len(req.Params.Stop) > 0 {
		openaiReq.Stop = req.Params.Stop
	}
	return openaiReq, nil
}

func convertError(err error) error {
	var apiErr *openai.APIError
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
	return "openai"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}

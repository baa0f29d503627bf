package openaicompat

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

// Options describes how one vendor's dialect deviates from the plain
// OpenAI wire format.
type Options struct {
	// Provider is the canonical vendor identifier.
	Provider string

	// DefaultBaseURL applies when the configuration has no BaseURL.
	DefaultBaseURL string

	// RequireBaseURL rejects configurations without an explicit
	// BaseURL (used by the custom gateway adapter).
	RequireBaseURL bool

	// Defaults supplies vendor default knobs for fields the caller
	// leaves unset. Nil fields are omitted from the request entirely.
	Defaults llm.Params

	// SendStream emits an explicit "stream": false field.
	SendStream bool

	// Strict rejects responses missing choices[0].message.content
	// with a parse error; lenient vendors log and return "".
	Strict bool

	// ErrorEnvelope checks for an error object inside an HTTP 200
	// body, as the Minimax family reports failures.
	ErrorEnvelope bool
}

// Client implements the llm.Client interface for OpenAI-compatible
// endpoints.
type Client struct {
	opts       Options
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client for the dialect described by opts.
func New(config llm.ClientConfig, opts Options) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.NewAuthError("missing_api_key",
			fmt.Sprintf("API key is required for %s", opts.Provider))
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		if opts.RequireBaseURL {
			return nil, llm.NewValidationError("missing_base_url",
				fmt.Sprintf("base URL is required for %s", opts.Provider))
		}
		baseURL = opts.DefaultBaseURL
	}

	return &Client{
		opts:       opts,
		apiKey:     config.APIKey,
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
	Model            string        `json:"model"`
	Messages         []wireMessage `json:"messages"`
	Temperature      *float64      `json:"temperature,omitempty"`
	TopP             *float64      `json:"top_p,omitempty"`
	TopK             *int          `json:"top_k,omitempty"`
	MaxTokens        *int          `json:"max_tokens,omitempty"`
	FrequencyPenalty *float64      `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64      `json:"presence_penalty,omitempty"`
	Stop             []string      `json:"stop,omitempty"`
	Stream           *bool         `json:"stream,omitempty"`
	Images           []string      `json:"images,omitempty"`
}

type wireResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Choices []struct {
		Message *wireMessage `json:"message"`
	} `json:"choices"`
}

// endpoint appends the chat completions path, avoiding a doubled /v1
// when the base URL already carries one.
func (c *Client) endpoint() string {
	if strings.HasSuffix(c.baseURL, "/v1") {
		return c.baseURL + "/chat/completions"
	}
	return c.baseURL + "/v1/chat/completions"
}

// pick returns the caller's value when set, the vendor default
// otherwise.
func pick[T any](caller, def *T) *T {
	if caller != nil {
		return caller
	}
	return def
}

// ChatCompletion performs a chat completion request.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	body := wireRequest{
		Model:            req.Model,
		Messages:         make([]wireMessage, 0, len(messages)),
		Temperature:      pick(req.Params.Temperature, c.opts.Defaults.Temperature),
		TopP:             pick(req.Params.TopP, c.opts.Defaults.TopP),
		TopK:             pick(req.Params.TopK, c.opts.Defaults.TopK),
		MaxTokens:        pick(req.Params.MaxTokens, c.opts.Defaults.MaxTokens),
		FrequencyPenalty: req.Params.FrequencyPenalty,
		PresencePenalty:  req.Params.PresencePenalty,
		Stop:             req.Params.Stop,
		Images:           req.Params.Attachments,
	}
	for _, msg := range messages {
		body.Messages = append(body.Messages, wireMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	if c.opts.SendStream {
		stream := false
		body.Stream = &stream
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	status, data, err := transport.PostJSON(ctx, c.httpClient, c.endpoint(), headers, body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", c.statusError(req.Model, status, data)
	}

	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", llm.NewParseError(fmt.Sprintf("failed to parse %s response: %v", c.opts.Provider, err))
	}
	if c.opts.ErrorEnvelope && resp.Error != nil {
		detail := resp.Error.Message
		if detail == "" {
			detail = "unknown error"
		}
		return "", llm.NewProviderError(status, fmt.Sprintf("%s API returned error: %s", c.opts.Provider, detail))
	}

	if len(resp.Choices) > 0 && resp.Choices[0].Message != nil {
		return resp.Choices[0].Message.Content, nil
	}
	if c.opts.Strict {
		return "", llm.NewParseError(fmt.Sprintf("%s response is missing choices[0].message.content", c.opts.Provider))
	}
	c.logger.Error("response contains no choices", zap.String("provider", c.opts.Provider))
	return "", nil
}

// statusError decorates a non-success status, surfacing the gateway's
// "Model does not exist" detail when present so a misspelled model is
// distinguishable from an outage.
func (c *Client) statusError(model string, status int, body []byte) error {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		if strings.Contains(strings.ToLower(envelope.Message), "model does not exist") {
			return &llm.Error{
				Code:       "model_not_found",
				Message:    fmt.Sprintf("model %q does not exist: %s", model, envelope.Message),
				Type:       llm.ErrTypeProvider,
				StatusCode: status,
			}
		}
		return llm.NewProviderError(status, fmt.Sprintf("%s API error: %s", c.opts.Provider, envelope.Message))
	}
	return llm.NewProviderError(status, fmt.Sprintf("%s API error: %s", c.opts.Provider, string(body)))
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return c.opts.Provider
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}

package aliyun

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

// DefaultBaseURL is the DashScope API endpoint.
const DefaultBaseURL = "https://dashscope.aliyuncs.com"

// Client implements the llm.Client interface for Alibaba Cloud Qwen
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new DashScope client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.NewAuthError("missing_api_key", "API key is required for Aliyun")
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

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireInput struct {
	Messages []wireMessage `json:"messages"`
	Images   []string      `json:"images,omitempty"`
}

type wireParameters struct {
	ResultFormat string  `json:"result_format"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	MaxTokens    int     `json:"max_tokens"`
}

type wireRequest struct {
	Model      string         `json:"model"`
	Input      wireInput      `json:"input"`
	Parameters wireParameters `json:"parameters"`
}

type wireResponse struct {
	Code    json.RawMessage `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Output  struct {
		Choices []struct {
			Message wireMessage `json:"message"`
		} `json:"choices"`
	} `json:"output"`
}

// errorCode normalizes the code field, which DashScope emits as either
// a number or a string. A zero or empty code means success.
func (r *wireResponse) errorCode() string {
	if len(r.Code) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Code, &s); err == nil {
		return s
	}
	var n int
	if err := json.Unmarshal(r.Code, &n); err == nil && n != 0 {
		return fmt.Sprintf("%d", n)
	}
	return ""
}

// ChatCompletion performs a text-generation request.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	body := wireRequest{
		Model: req.Model,
		Input: wireInput{
			Messages: make([]wireMessage, 0, len(messages)),
			Images:   req.Params.Attachments,
		},
		Parameters: wireParameters{
			ResultFormat: "message",
			Temperature:  llm.FloatOr(req.Params.Temperature, 0.7),
			TopP:         llm.FloatOr(req.Params.TopP, 0.8),
			MaxTokens:    llm.IntOr(req.Params.MaxTokens, 1024),
		},
	}

	// Qwen only understands user and assistant turns.
	for _, msg := range messages {
		role := string(msg.Role)
		if msg.Role != llm.RoleUser && msg.Role != llm.RoleAssistant {
			c.logger.Warn("converting unsupported role to user", zap.String("role", role))
			role = string(llm.RoleUser)
		}
		body.Input.Messages = append(body.Input.Messages, wireMessage{Role: role, Content: msg.Content})
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	url := c.baseURL + "/api/v1/services/aigc/text-generation/generation"
	status, data, err := transport.PostJSON(ctx, c.httpClient, url, headers, body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", llm.NewProviderError(status, fmt.Sprintf("aliyun API error: %s", string(data)))
	}

	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", llm.NewParseError(fmt.Sprintf("failed to parse aliyun response: %v", err))
	}
	if code := resp.errorCode(); code != "" {
		detail := resp.Message
		if detail == "" {
			detail = "unknown error"
		}
		return "", llm.NewProviderError(status, fmt.Sprintf("aliyun API returned error %s: %s", code, detail))
	}

	if len(resp.Output.Choices) > 0 {
		return resp.Output.Choices[0].Message.Content, nil
	}
	c.logger.Error("aliyun response contains no choices")
	return "", nil
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "aliyun"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}

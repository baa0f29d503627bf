package replicate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omnillm/omnillm/pkg/llm"
	"github.com/omnillm/omnillm/pkg/providers/internal/transport"
)

const (
	// DefaultBaseURL is the Replicate API endpoint.
	DefaultBaseURL = "https://api.replicate.com"

	defaultPollInterval = 2 * time.Second
	maxPollAttempts     = 30
)

// Client implements the llm.Client interface for Replicate
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	// pollInterval is shortened in tests.
	pollInterval time.Duration
}

// NewClient creates a new Replicate client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.NewAuthError("missing_api_key", "API key is required for Replicate")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		apiKey:       config.APIKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: config.EffectiveTimeout()},
		logger:       config.EffectiveLogger(),
		pollInterval: defaultPollInterval,
	}, nil
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type predictionInput struct {
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type predictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ChatCompletion creates a prediction and polls it to completion.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	body := predictionRequest{
		Version: req.Model,
		Input: predictionInput{
			Messages:    make([]wireMessage, 0, len(messages)),
			Temperature: llm.FloatOr(req.Params.Temperature, 0.7),
			MaxTokens:   llm.IntOr(req.Params.MaxTokens, 1024),
		},
	}
	for _, msg := range messages {
		body.Input.Messages = append(body.Input.Messages, wireMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	headers := map[string]string{"Authorization": "Token " + c.apiKey}
	status, data, err := transport.PostJSON(ctx, c.httpClient, c.baseURL+"/v1/predictions", headers, body)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", llm.NewProviderError(status, fmt.Sprintf("replicate prediction creation failed: %s", string(data)))
	}

	var created prediction
	if err := json.Unmarshal(data, &created); err != nil {
		return "", llm.NewParseError(fmt.Sprintf("failed to parse replicate response: %v", err))
	}
	if created.ID == "" {
		return "", llm.NewParseError("replicate response has no prediction id")
	}

	return c.poll(ctx, created.ID, headers)
}

func (c *Client) poll(ctx context.Context, id string, headers map[string]string) (string, error) {
	url := fmt.Sprintf("%s/v1/predictions/%s", c.baseURL, id)

	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", &llm.Error{
				Code:    "network_error",
				Message: fmt.Sprintf("replicate poll cancelled: %v", ctx.Err()),
				Type:    llm.ErrTypeProvider,
			}
		case <-time.After(c.pollInterval):
		}

		status, data, err := transport.GetJSON(ctx, c.httpClient, url, headers)
		if err != nil {
			return "", err
		}
		if status != http.StatusOK {
			c.logger.Warn("replicate status poll failed", zap.Int("status", status))
			continue
		}

		var pred prediction
		if err := json.Unmarshal(data, &pred); err != nil {
			c.logger.Warn("replicate status poll returned invalid JSON", zap.Error(err))
			continue
		}

		switch pred.Status {
		case "succeeded":
			return extractOutput(pred.Output)
		case "failed":
			detail := pred.Error
			if detail == "" {
				detail = "unknown error"
			}
			return "", llm.NewProviderError(0, fmt.Sprintf("replicate prediction failed: %s", detail))
		}
	}

	return "", llm.NewProviderError(0, fmt.Sprintf("replicate prediction timed out after %d polls", maxPollAttempts))
}

func extractOutput(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", nil
		}
		return list[0], nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	return string(raw), nil
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "replicate"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}

package gemini

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/omnillm/omnillm/pkg/llm"
)

// noValidResponse is returned when Gemini answers successfully but no
// text can be extracted from any candidate. Kept as a degraded result
// rather than an error for parity with the other lenient adapters.
const noValidResponse = "no valid response"

// Client implements the llm.Client interface for Google Gemini
type Client struct {
	genai  *genai.Client
	logger *zap.Logger
}

// NewClient creates a new Gemini client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.NewAuthError("missing_api_key", "API key is required for Gemini")
	}

	timeout := config.EffectiveTimeout()
	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	clientConfig.HTTPOptions.Timeout = &timeout

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, llm.NewAuthError("client_error", fmt.Sprintf("failed to create Gemini client: %v", err))
	}

	return &Client{
		genai:  client,
		logger: config.EffectiveLogger(),
	}, nil
}

// ChatCompletion performs a content generation request
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	contents := convertMessages(messages, req.Params.Attachments)
	config := convertParams(req.Params)

	resp, err := c.genai.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return "", convertError(err)
	}

	text := extractText(resp)
	if text == "" {
		c.logger.Warn("gemini response contains no extractable text")
		return noValidResponse, nil
	}
	return text, nil
}

// convertMessages maps the conversation onto Gemini contents: system
// and user turns become user contents, assistant turns become model
// contents, and every user turn carries one file part per attachment
// URI.
func convertMessages(messages []llm.Message, attachments []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.RoleUser
		if msg.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		parts := []*genai.Part{genai.NewPartFromText(msg.Content)}
		if msg.Role == llm.RoleUser {
			for _, uri := range attachments {
				parts = append(parts, genai.NewPartFromURI(uri, mimeTypeFor(uri)))
			}
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}

// mimeTypeFor guesses an attachment's MIME type from its extension,
// defaulting to image/png.
func mimeTypeFor(uri string) string {
	if t := mime.TypeByExtension(path.Ext(uri)); t != "" {
		return t
	}
	return "image/png"
}

func convertParams(params llm.Params) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(llm.IntOr(params.MaxTokens, 1024)),
		StopSequences:   params.Stop,
	}
	if params.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*params.Temperature))
	}
	if params.TopP != nil {
		config.TopP = genai.Ptr(float32(*params.TopP))
	}
	if params.TopK != nil {
		config.TopK = genai.Ptr(float32(*params.TopK))
	}
	return config
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String()
}

func convertError(err error) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "api key") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "permission"):
		return &llm.Error{
			Code:       "authentication_error",
			Message:    msg,
			Type:       llm.ErrTypeAuthentication,
			StatusCode: 401,
		}
	case strings.Contains(lower, "deadline") || strings.Contains(lower, "timeout"):
		return &llm.Error{
			Code:    "timeout_error",
			Message: msg,
			Type:    llm.ErrTypeProvider,
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
	return "gemini"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}

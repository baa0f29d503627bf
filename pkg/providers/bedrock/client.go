package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/omnillm/omnillm/pkg/llm"
)

// DefaultRegion is used when the configuration does not name one.
const DefaultRegion = "us-east-1"

// Client implements the llm.Client interface for AWS Bedrock
type Client struct {
	runtime *bedrockruntime.Client
	region  string
	logger  *zap.Logger
}

// NewClient creates a new Bedrock client. Credentials are resolved
// through the standard AWS chain (environment, shared config, IMDS).
func NewClient(config llm.ClientConfig) (*Client, error) {
	region := config.Region
	if region == "" {
		region = DefaultRegion
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, llm.NewAuthError("aws_config_error", fmt.Sprintf("failed to load AWS configuration: %v", err))
	}

	runtime := bedrockruntime.NewFromConfig(awsConfig, func(o *bedrockruntime.Options) {
		if config.BaseURL != "" {
			o.BaseEndpoint = aws.String(config.BaseURL)
		}
	})

	return &Client{
		runtime: runtime,
		region:  region,
		logger:  config.EffectiveLogger(),
	}, nil
}

// ChatCompletion performs an InvokeModel request
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	payload, err := convertRequest(req.Model, messages, req.Params)
	if err != nil {
		return "", err
	}

	resp, err := c.runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(req.Model),
		ContentType: aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return "", convertError(err)
	}

	return convertResponse(req.Model, resp.Body)
}

func isClaudeModel(model string) bool { return strings.Contains(model, "claude") }
func isTitanModel(model string) bool  { return strings.Contains(model, "titan") }
func isLlamaModel(model string) bool  { return strings.Contains(model, "llama") }

// convertRequest builds the invocation payload for the model family.
// Unknown families default to the Claude messages format.
func convertRequest(model string, messages []llm.Message, params llm.Params) ([]byte, error) {
	switch {
	case isTitanModel(model):
		return convertTitanRequest(messages, params)
	case isLlamaModel(model):
		return convertLlamaRequest(messages, params)
	default:
		return convertClaudeRequest(messages, params)
	}
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Messages         []claudeMessage `json:"messages"`
	System           string          `json:"system,omitempty"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
}

func convertClaudeRequest(messages []llm.Message, params llm.Params) ([]byte, error) {
	req := claudeRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        llm.IntOr(params.MaxTokens, 1000),
		Temperature:      params.Temperature,
		TopP:             params.TopP,
	}

	var system strings.Builder
	for _, msg := range messages {
		if msg.Role == llm.RoleSystem {
			system.WriteString(msg.Content)
			system.WriteString("\n")
			continue
		}
		req.Messages = append(req.Messages, claudeMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	req.System = strings.TrimSpace(system.String())

	return json.Marshal(req)
}

type titanTextConfig struct {
	MaxTokenCount int      `json:"maxTokenCount"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"topP"`
	StopSequences []string `json:"stopSequences,omitempty"`
}

type titanRequest struct {
	InputText            string          `json:"inputText"`
	TextGenerationConfig titanTextConfig `json:"textGenerationConfig"`
}

func convertTitanRequest(messages []llm.Message, params llm.Params) ([]byte, error) {
	return json.Marshal(titanRequest{
		InputText: flattenPrompt(messages),
		TextGenerationConfig: titanTextConfig{
			MaxTokenCount: llm.IntOr(params.MaxTokens, 1000),
			Temperature:   llm.FloatOr(params.Temperature, 0.7),
			TopP:          llm.FloatOr(params.TopP, 1.0),
			StopSequences: params.Stop,
		},
	})
}

type llamaRequest struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

func convertLlamaRequest(messages []llm.Message, params llm.Params) ([]byte, error) {
	return json.Marshal(llamaRequest{
		Prompt:      flattenPrompt(messages),
		MaxGenLen:   llm.IntOr(params.MaxTokens, 1000),
		Temperature: llm.FloatOr(params.Temperature, 0.7),
		TopP:        llm.FloatOr(params.TopP, 1.0),
	})
}

// flattenPrompt renders a conversation as a single prompt for the
// model families without a structured chat format.
func flattenPrompt(messages []llm.Message) string {
	var prompt strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleAssistant:
			prompt.WriteString("Assistant: ")
		case llm.RoleSystem:
			prompt.WriteString("System: ")
		default:
			prompt.WriteString("User: ")
		}
		prompt.WriteString(msg.Content)
		prompt.WriteString("\n")
	}
	prompt.WriteString("Assistant:")
	return prompt.String()
}

func convertResponse(model string, body []byte) (string, error) {
	switch {
	case isTitanModel(model):
		var resp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", llm.NewParseError(fmt.Sprintf("failed to parse titan response: %v", err))
		}
		if len(resp.Results) == 0 {
			return "", llm.NewParseError("titan response has no results")
		}
		return resp.Results[0].OutputText, nil

	case isLlamaModel(model):
		var resp struct {
			Generation string `json:"generation"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", llm.NewParseError(fmt.Sprintf("failed to parse llama response: %v", err))
		}
		return resp.Generation, nil

	default:
		var resp struct {
			Completion string `json:"completion"`
			Content    []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", llm.NewParseError(fmt.Sprintf("failed to parse claude response: %v", err))
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
		// Legacy Claude v2 answers with a bare completion field.
		return resp.Completion, nil
	}
}

func convertError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "UnauthorizedOperation", "AccessDeniedException", "AuthFailure":
			return &llm.Error{
				Code:       "authentication_error",
				Message:    apiErr.ErrorMessage(),
				Type:       llm.ErrTypeAuthentication,
				StatusCode: 401,
			}
		case "ThrottlingException", "TooManyRequestsException":
			return &llm.Error{
				Code:       "rate_limit_error",
				Message:    apiErr.ErrorMessage(),
				Type:       llm.ErrTypeProvider,
				StatusCode: 429,
			}
		default:
			return &llm.Error{
				Code:    apiErr.ErrorCode(),
				Message: apiErr.ErrorMessage(),
				Type:    llm.ErrTypeProvider,
			}
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
	return "bedrock"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}

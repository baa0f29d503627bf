package zhipu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omnillm/omnillm/pkg/llm"
	"github.com/omnillm/omnillm/pkg/providers/internal/transport"
)

const (
	// DefaultBaseURL is the Zhipu open platform endpoint.
	DefaultBaseURL = "https://open.bigmodel.cn"

	// tokenTTL is the lifetime of each minted JWT.
	tokenTTL = time.Hour
)

// Client implements the llm.Client interface for Zhipu GLM
type Client struct {
	apiKey     string
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	// now is replaced in tests.
	now func() time.Time
}

// NewClient creates a new Zhipu client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.NewAuthError("missing_api_key", "API key is required for Zhipu")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.EffectiveTimeout()},
		logger:     config.EffectiveLogger(),
		now:        time.Now,
	}

	parts := strings.SplitN(config.APIKey, ".", 2)
	if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
		c.keyID, c.keySecret = parts[0], parts[1]
	} else {
		c.logger.Warn("zhipu API key is not in id.secret form, using it verbatim as bearer token")
	}

	return c, nil
}

// bearerToken returns the Authorization value for a request: a freshly
// minted JWT when the key splits into id and secret, the raw key
// otherwise.
func (c *Client) bearerToken() string {
	if c.keySecret == "" {
		return c.apiKey
	}

	iat := c.now().Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"api_key":   c.keyID,
		"exp":       iat + int64(tokenTTL.Seconds()),
		"timestamp": iat,
		"uuid":      uuid.NewString(),
	})
	token.Header["sign_type"] = "SIGN"
	signed, err := token.SignedString([]byte(c.keySecret))
	if err != nil {
		c.logger.Warn("failed to sign zhipu JWT, using raw API key", zap.Error(err))
		return c.apiKey
	}
	return signed
}

// endpointFor selects between the v3 model invocation path used by the
// legacy chatglm models and the v4 chat completions path.
func (c *Client) endpointFor(model string) string {
	if strings.Contains(strings.ToLower(model), "chatglm") {
		return fmt.Sprintf("%s/api/paas/v3/model-api/%s/sse-invoke", c.baseURL, url.PathEscape(model))
	}
	return c.baseURL + "/api/paas/v4/chat/completions"
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
	Images      []string      `json:"images,omitempty"`
}

type wireChoices struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
}

type wireResponse struct {
	Code int         `json:"code,omitempty"`
	Msg  string      `json:"msg,omitempty"`
	Data wireChoices `json:"data"`
	wireChoices
}

// ChatCompletion performs a chat completion request.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	body := wireRequest{
		Model:       req.Model,
		Messages:    make([]wireMessage, 0, len(messages)),
		Temperature: llm.FloatOr(req.Params.Temperature, 0.7),
		TopP:        llm.FloatOr(req.Params.TopP, 0.7),
		MaxTokens:   llm.IntOr(req.Params.MaxTokens, 1024),
		Stream:      false,
		Images:      req.Params.Attachments,
	}

	// GLM only understands user and assistant turns.
	for _, msg := range messages {
		role := string(msg.Role)
		if msg.Role != llm.RoleUser && msg.Role != llm.RoleAssistant {
			c.logger.Warn("converting unsupported role to user", zap.String("role", role))
			role = string(llm.RoleUser)
		}
		body.Messages = append(body.Messages, wireMessage{Role: role, Content: msg.Content})
	}

	headers := map[string]string{"Authorization": "Bearer " + c.bearerToken()}
	status, data, err := transport.PostJSON(ctx, c.httpClient, c.endpointFor(req.Model), headers, body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", llm.NewProviderError(status, fmt.Sprintf("zhipu API error: %s", string(data)))
	}

	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", llm.NewParseError(fmt.Sprintf("failed to parse zhipu response: %v", err))
	}
	if resp.Code != 0 {
		detail := resp.Msg
		if detail == "" {
			detail = "unknown error"
		}
		return "", llm.NewProviderError(status, fmt.Sprintf("zhipu API returned error %d: %s", resp.Code, detail))
	}

	// The v4 API nests choices under data; v3 puts them at the top
	// level. Try the newer shape first.
	if len(resp.Data.Choices) > 0 {
		return resp.Data.Choices[0].Message.Content, nil
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, nil
	}
	c.logger.Error("zhipu response contains no choices")
	return "", nil
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "zhipu"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}

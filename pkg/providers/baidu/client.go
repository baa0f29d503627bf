package baidu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/omnillm/omnillm/pkg/llm"
	"github.com/omnillm/omnillm/pkg/providers/internal/transport"
)

const (
	// DefaultBaseURL is the Baidu AI Cloud endpoint.
	DefaultBaseURL = "https://aip.baidubce.com"

	// tokenRefreshBuffer refreshes the cached token this long before
	// its reported expiry.
	tokenRefreshBuffer = 60 * time.Second

	// defaultTokenTTL applies when the token endpoint omits
	// expires_in. Baidu tokens normally live 30 days.
	defaultTokenTTL = 2592000 * time.Second
)

// Token-expired and token-invalid vendor error codes. A request that
// fails with one of these clears the cache and is retried once.
const (
	codeTokenExpired = 110
	codeTokenInvalid = 111
)

// Client implements the llm.Client interface for Baidu ERNIE
type Client struct {
	apiKey     string
	secretKey  string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu             sync.Mutex
	accessToken    string
	tokenExpiresAt time.Time

	// now is replaced in tests.
	now func() time.Time
}

// NewClient creates a new Baidu client
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.NewAuthError("missing_api_key", "API key is required for Baidu")
	}
	if config.SecretKey == "" {
		return nil, llm.NewAuthError("missing_secret_key", "secret key is required for Baidu")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		apiKey:     config.APIKey,
		secretKey:  config.SecretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.EffectiveTimeout()},
		logger:     config.EffectiveLogger(),
		now:        time.Now,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// accessTokenValue returns the cached token, fetching a new one from
// the OAuth2 client-credentials endpoint when the cache is empty or
// within the refresh buffer of expiry.
func (c *Client) accessTokenValue(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiresAt.Add(-tokenRefreshBuffer)) {
		return c.accessToken, nil
	}

	tokenURL := fmt.Sprintf("%s/oauth/2.0/token?grant_type=client_credentials&client_id=%s&client_secret=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(c.secretKey))

	status, data, err := transport.PostJSON(ctx, c.httpClient, tokenURL, nil, nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", llm.NewAuthError("token_error",
			fmt.Sprintf("baidu token request failed with status %d: %s", status, string(data)))
	}

	var resp tokenResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", llm.NewAuthError("token_error", fmt.Sprintf("failed to parse baidu token response: %v", err))
	}
	if resp.AccessToken == "" {
		return "", llm.NewAuthError("token_error", "baidu token response has no access_token")
	}

	ttl := defaultTokenTTL
	if resp.ExpiresIn > 0 {
		ttl = time.Duration(resp.ExpiresIn) * time.Second
	}
	c.accessToken = resp.AccessToken
	c.tokenExpiresAt = c.now().Add(ttl)
	c.logger.Debug("fetched new baidu access token", zap.Time("expires_at", c.tokenExpiresAt))

	return c.accessToken, nil
}

// invalidateToken drops the cached token so the next request mints a
// fresh one.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.tokenExpiresAt = time.Time{}
	c.mu.Unlock()
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model        string        `json:"model"`
	Messages     []wireMessage `json:"messages"`
	Temperature  float64       `json:"temperature"`
	TopP         float64       `json:"top_p"`
	PenaltyScore float64       `json:"penalty_score"`
	Images       []string      `json:"images,omitempty"`
}

type wireResponse struct {
	ErrorCode int             `json:"error_code,omitempty"`
	ErrorMsg  string          `json:"error_msg,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// ChatCompletion performs a chat completion request, retrying exactly
// once with a fresh token when the API reports the current one invalid.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	body := wireRequest{
		Model:        req.Model,
		Messages:     make([]wireMessage, 0, len(messages)),
		Temperature:  llm.FloatOr(req.Params.Temperature, 0.7),
		TopP:         llm.FloatOr(req.Params.TopP, 0.8),
		PenaltyScore: llm.FloatOr(req.Params.PresencePenalty, 1.0),
		Images:       req.Params.Attachments,
	}

	// ERNIE only understands user and assistant turns.
	for _, msg := range messages {
		role := string(msg.Role)
		if msg.Role != llm.RoleUser && msg.Role != llm.RoleAssistant {
			c.logger.Warn("converting unsupported role to user", zap.String("role", role))
			role = string(llm.RoleUser)
		}
		body.Messages = append(body.Messages, wireMessage{Role: role, Content: msg.Content})
	}

	const maxAttempts = 2
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, retry, err := c.doRequest(ctx, req.Model, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retry {
			return "", err
		}
		c.logger.Warn("baidu access token rejected, refreshing and retrying")
		c.invalidateToken()
	}
	return "", lastErr
}

// doRequest performs one chat attempt. The second return value reports
// whether the failure was a token-invalid error worth one retry.
func (c *Client) doRequest(ctx context.Context, model string, body wireRequest) (string, bool, error) {
	token, err := c.accessTokenValue(ctx)
	if err != nil {
		return "", false, err
	}

	apiURL := fmt.Sprintf("%s/rpc/2.0/ai_custom/v1/wenxinworkshop/chat/%s?access_token=%s",
		c.baseURL, url.PathEscape(model), url.QueryEscape(token))

	status, data, err := transport.PostJSON(ctx, c.httpClient, apiURL, nil, body)
	if err != nil {
		return "", false, err
	}

	if status != http.StatusOK {
		err := llm.NewProviderError(status, fmt.Sprintf("baidu API error: %s", string(data)))
		return "", isTokenError(data), err
	}

	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", false, llm.NewParseError(fmt.Sprintf("failed to parse baidu response: %v", err))
	}
	if resp.ErrorCode != 0 {
		retry := resp.ErrorCode == codeTokenExpired || resp.ErrorCode == codeTokenInvalid
		detail := resp.ErrorMsg
		if detail == "" {
			detail = "unknown error"
		}
		return "", retry, llm.NewProviderError(status,
			fmt.Sprintf("baidu API returned error %d: %s", resp.ErrorCode, detail))
	}

	return extractResult(resp.Result, c.logger)
}

// extractResult handles the two documented result shapes: a plain
// string, or an object with a content field.
func extractResult(raw json.RawMessage, logger *zap.Logger) (string, bool, error) {
	if len(raw) > 0 {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, false, nil
		}
		var obj struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil && obj.Content != "" {
			return obj.Content, false, nil
		}
	}
	logger.Error("baidu response contains no extractable text")
	return "", false, nil
}

func isTokenError(body []byte) bool {
	var resp wireResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	return resp.ErrorCode == codeTokenExpired || resp.ErrorCode == codeTokenInvalid
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "baidu"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}
